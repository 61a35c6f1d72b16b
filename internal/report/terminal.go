package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/law-makers/shelf/internal/stats"
	"github.com/law-makers/shelf/internal/ui"
	"github.com/law-makers/shelf/pkg/models"
)

const (
	barWidth    = 40
	reviewWidth = 20
)

// RenderOptions controls terminal rendering
type RenderOptions struct {
	Color bool
	Bins  int
}

// Render writes the metrics block, the price histogram, the price/rating
// points sized by review count and the records table
func Render(w io.Writer, result *models.CollectionResult, opts RenderOptions) error {
	style := func(f func(string) string, s string) string {
		if opts.Color {
			return f(s)
		}
		return s
	}

	fmt.Fprintln(w)
	if result.PageTitle != "" {
		fmt.Fprintf(w, "%s\n", style(ui.Bold, result.PageTitle))
	}
	fmt.Fprintf(w, "%s  %s\n\n", style(ui.Info, result.SourceURL),
		style(ui.Info, fmt.Sprintf("(%d products via %s in %s)", len(result.Records), result.Engine, result.Duration.Round(1e6))))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, m := range Metrics(result.Summary) {
		fmt.Fprintf(tw, "  %s\t%s\n", m.Label, style(ui.Success, m.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	bins := opts.Bins
	if bins <= 0 {
		bins = stats.DefaultBins
	}
	if hist, err := stats.Histogram(result.Records, bins); err == nil {
		fmt.Fprintf(w, "\n%s\n", style(ui.Bold, "Price Distribution"))
		renderHistogram(w, hist)
	}

	fmt.Fprintf(w, "\n%s\n", style(ui.Bold, "Price vs Rating"))
	if err := renderScatter(w, stats.Scatter(result.Records)); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n", style(ui.Bold, "Raw Data"))
	return renderTable(w, result.Records)
}

func renderHistogram(w io.Writer, bins []stats.Bin) {
	peak := stats.MaxCount(bins)
	for _, b := range bins {
		n := 0
		if peak > 0 {
			n = b.Count * barWidth / peak
		}
		if b.Count > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(w, "  %9s - %-9s %s %d\n", FormatPrice(b.Lower), FormatPrice(b.Upper), strings.Repeat("█", n), b.Count)
	}
}

// renderScatter lists each point with a review bar whose length is
// proportional to its share of the largest review count
func renderScatter(w io.Writer, points []stats.Point) error {
	peak := stats.MaxSize(points)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range points {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s %d\n", p.Label, FormatPrice(p.Price), FormatRating(p.Rating), reviewBar(p.Size, peak), p.Size)
	}
	return tw.Flush()
}

func reviewBar(size, peak int64) string {
	if peak <= 0 || size <= 0 {
		return "·"
	}
	n := int(math.Round(float64(size) / float64(peak) * reviewWidth))
	if n == 0 {
		n = 1
	}
	return strings.Repeat("●", n)
}

func renderTable(w io.Writer, records []models.ProductRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "#\tName\tPrice\tRating\tReviews\t\n")
	for i, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%d\t\n", i+1, r.Name, FormatPrice(r.Price), r.Rating, r.ReviewCount)
	}
	return tw.Flush()
}
