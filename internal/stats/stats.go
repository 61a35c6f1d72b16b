// Package stats aggregates product records into summary statistics and the
// distributions shown by the dashboard.
package stats

import (
	"errors"
	"math"

	"github.com/law-makers/shelf/pkg/models"
)

var (
	// ErrEmptyInput is returned when there is nothing to summarize
	ErrEmptyInput = errors.New("no records to summarize")

	// ErrReviewOverflow is returned when the review total does not fit in an int64
	ErrReviewOverflow = errors.New("total review count overflows int64")
)

// Summarize computes mean price, mean rating, the exact review total and the
// price range. It never returns zero or NaN placeholders for empty input.
func Summarize(records []models.ProductRecord) (models.Summary, error) {
	if len(records) == 0 {
		return models.Summary{}, ErrEmptyInput
	}

	var (
		priceSum  float64
		ratingSum float64
		total     int64
		minPrice  = records[0].Price
		maxPrice  = records[0].Price
	)

	for _, r := range records {
		priceSum += r.Price
		ratingSum += r.Rating

		if r.ReviewCount > 0 && total > math.MaxInt64-r.ReviewCount {
			return models.Summary{}, ErrReviewOverflow
		}
		total += r.ReviewCount

		if r.Price < minPrice {
			minPrice = r.Price
		}
		if r.Price > maxPrice {
			maxPrice = r.Price
		}
	}

	n := float64(len(records))
	return models.Summary{
		AvgPrice:     priceSum / n,
		AvgRating:    ratingSum / n,
		TotalReviews: total,
		PriceRange:   models.PriceRange{Min: minPrice, Max: maxPrice},
	}, nil
}
