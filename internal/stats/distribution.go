package stats

import (
	"fmt"
	"math"

	"github.com/law-makers/shelf/pkg/models"
)

// DefaultBins is the number of price histogram bins used by the dashboard
const DefaultBins = 20

// Bin is one equal-width price interval. Upper is exclusive except for the
// last bin, which includes the maximum price.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Point is one product in the price/rating scatter, sized by review count
type Point struct {
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
	Size   int64   `json:"size"`
	Label  string  `json:"label"`
}

// Histogram counts prices into equal-width bins spanning the price range.
// When every price is the same a single bin holds all records.
func Histogram(records []models.ProductRecord, bins int) ([]Bin, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}

	lo, hi := records[0].Price, records[0].Price
	for _, r := range records[1:] {
		lo = min(lo, r.Price)
		hi = max(hi, r.Price)
	}

	span := hi - lo
	width := span / float64(bins)
	// A span too narrow to split (including subnormal ranges whose width
	// underflows to zero) collapses into one bin.
	if !(width > 0) || math.IsInf(span, 0) {
		return []Bin{{Lower: lo, Upper: hi, Count: len(records)}}, nil
	}

	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, r := range records {
		out[binIndex(r.Price, lo, span, bins)].Count++
	}

	return out, nil
}

// binIndex maps price onto [0, bins) by its fraction of the span, so the
// index never depends on dividing by a width that may round to zero.
func binIndex(price, lo, span float64, bins int) int {
	idx := int(float64(bins) * ((price - lo) / span))
	if idx < 0 {
		return 0
	}
	if idx >= bins {
		return bins - 1
	}
	return idx
}

// Scatter returns one point per record in record order
func Scatter(records []models.ProductRecord) []Point {
	points := make([]Point, len(records))
	for i, r := range records {
		points[i] = Point{
			Price:  r.Price,
			Rating: r.Rating,
			Size:   r.ReviewCount,
			Label:  r.Name,
		}
	}
	return points
}

// MaxCount returns the largest bin count, used to scale bar charts
func MaxCount(bins []Bin) int {
	m := 0
	for _, b := range bins {
		m = max(m, b.Count)
	}
	return m
}

// MaxSize returns the largest point size, used to scale review markers
func MaxSize(points []Point) int64 {
	var m int64
	for _, p := range points {
		m = max(m, p.Size)
	}
	return m
}
