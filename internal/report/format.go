package report

import (
	"fmt"

	"github.com/law-makers/shelf/pkg/models"
)

// FormatPrice renders a price as "$19.50"
func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatRating renders a rating as "4.4/5.0"
func FormatRating(v float64) string {
	return fmt.Sprintf("%.1f/5.0", v)
}

// FormatRange renders a price range as "$9.99 - $19.50"
func FormatRange(r models.PriceRange) string {
	return FormatPrice(r.Min) + " - " + FormatPrice(r.Max)
}

// Metric is one labelled headline value
type Metric struct {
	Label string
	Value string
}

// Metrics returns the four headline values in display order
func Metrics(s models.Summary) []Metric {
	return []Metric{
		{Label: "Average Price", Value: FormatPrice(s.AvgPrice)},
		{Label: "Average Rating", Value: FormatRating(s.AvgRating)},
		{Label: "Total Reviews", Value: fmt.Sprintf("%d", s.TotalReviews)},
		{Label: "Price Range", Value: FormatRange(s.PriceRange)},
	}
}
