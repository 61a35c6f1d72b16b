// internal/extract/extract.go
package extract

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/law-makers/shelf/pkg/models"
)

// ErrExtraction is matched by every extraction failure
var ErrExtraction = errors.New("extraction failed")

// Causes wrapped inside an ElementError
var (
	ErrMissingField = errors.New("field not found")
	ErrMalformed    = errors.New("malformed value")
)

// Field names used in ElementError
const (
	FieldName    = "name"
	FieldPrice   = "price"
	FieldRating  = "rating"
	FieldReviews = "review_count"
)

// Selectors locates product cards and their fields. Field selectors are
// matched against descendants of a card.
type Selectors struct {
	Card    string `yaml:"card"`
	Name    string `yaml:"name"`
	Price   string `yaml:"price"`
	Rating  string `yaml:"rating"`
	Reviews string `yaml:"reviews"`
}

// DefaultSelectors returns the class markers used when none are configured
func DefaultSelectors() Selectors {
	return Selectors{
		Card:    ".product-card",
		Name:    ".product-name",
		Price:   ".product-price",
		Rating:  ".product-rating",
		Reviews: ".review-count",
	}
}

// ElementError reports the first candidate that could not be read
type ElementError struct {
	Index int // zero-based position in document order
	Field string
	Text  string
	Err   error
}

func (e *ElementError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("%s: product %d: %s: %v", ErrExtraction, e.Index+1, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: product %d: %s %q: %v", ErrExtraction, e.Index+1, e.Field, e.Text, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

func (e *ElementError) Is(target error) bool {
	return target == ErrExtraction
}

// Extractor reads product records out of a parsed document
type Extractor struct {
	selectors Selectors
	card      cascadia.Selector
	name      cascadia.Selector
	price     cascadia.Selector
	rating    cascadia.Selector
	reviews   cascadia.Selector
}

// New compiles the selectors. Empty fields fall back to DefaultSelectors.
func New(s Selectors) (*Extractor, error) {
	def := DefaultSelectors()
	if s.Card == "" {
		s.Card = def.Card
	}
	if s.Name == "" {
		s.Name = def.Name
	}
	if s.Price == "" {
		s.Price = def.Price
	}
	if s.Rating == "" {
		s.Rating = def.Rating
	}
	if s.Reviews == "" {
		s.Reviews = def.Reviews
	}

	e := &Extractor{selectors: s}
	for _, c := range []struct {
		field string
		expr  string
		dst   *cascadia.Selector
	}{
		{"card", s.Card, &e.card},
		{FieldName, s.Name, &e.name},
		{FieldPrice, s.Price, &e.price},
		{FieldRating, s.Rating, &e.rating},
		{FieldReviews, s.Reviews, &e.reviews},
	} {
		compiled, err := cascadia.Compile(c.expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s selector %q: %w", c.field, c.expr, err)
		}
		*c.dst = compiled
	}

	return e, nil
}

// Selectors returns the effective selectors
func (e *Extractor) Selectors() Selectors {
	return e.selectors
}

// HasCandidates reports whether the document contains at least one card
func (e *Extractor) HasCandidates(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}
	return doc.FindMatcher(e.card).Length() > 0
}

// Extract reads at most limit cards in document order. Either every card
// within the limit yields a record or the whole call fails; cards past the
// limit are never read. A document without cards yields an empty slice.
func (e *Extractor) Extract(doc *goquery.Document, limit int) ([]models.ProductRecord, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrExtraction)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrExtraction, limit)
	}

	cards := doc.FindMatcher(e.card)
	if cards.Length() > limit {
		cards = cards.Slice(0, limit)
	}

	records := make([]models.ProductRecord, 0, cards.Length())
	var failure *ElementError

	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		rec, err := e.readCard(i, card)
		if err != nil {
			failure = err
			return false
		}
		records = append(records, rec)
		return true
	})

	if failure != nil {
		return nil, failure
	}
	return records, nil
}

func (e *Extractor) readCard(index int, card *goquery.Selection) (models.ProductRecord, *ElementError) {
	var rec models.ProductRecord

	name, err := fieldText(card, e.name)
	if err != nil {
		return rec, &ElementError{Index: index, Field: FieldName, Err: err}
	}

	priceText, err := fieldText(card, e.price)
	if err != nil {
		return rec, &ElementError{Index: index, Field: FieldPrice, Err: err}
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		return rec, &ElementError{Index: index, Field: FieldPrice, Text: priceText, Err: err}
	}

	ratingText, err := fieldText(card, e.rating)
	if err != nil {
		return rec, &ElementError{Index: index, Field: FieldRating, Err: err}
	}
	rating, err := ParseRating(ratingText)
	if err != nil {
		return rec, &ElementError{Index: index, Field: FieldRating, Text: ratingText, Err: err}
	}

	reviewsText, err := fieldText(card, e.reviews)
	if err != nil {
		return rec, &ElementError{Index: index, Field: FieldReviews, Err: err}
	}
	reviews, err := ParseReviewCount(reviewsText)
	if err != nil {
		return rec, &ElementError{Index: index, Field: FieldReviews, Text: reviewsText, Err: err}
	}

	return models.ProductRecord{
		Name:        name,
		Price:       price,
		Rating:      rating,
		ReviewCount: reviews,
	}, nil
}

// fieldText returns the trimmed text of the first matching descendant
func fieldText(card *goquery.Selection, sel cascadia.Selector) (string, error) {
	field := card.FindMatcher(sel).First()
	if field.Length() == 0 {
		return "", ErrMissingField
	}
	return strings.TrimSpace(field.Text()), nil
}

// ParsePrice strips one leading currency symbol and parses the rest.
// Negative and non-finite values are rejected.
func ParsePrice(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if r, size := utf8.DecodeRuneInString(s); size > 0 && unicode.Is(unicode.Sc, r) {
		s = strings.TrimSpace(s[size:])
	}
	v, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative price", ErrMalformed)
	}
	return v, nil
}

// ParseRating parses a rating. The value is not clamped to any scale.
func ParseRating(text string) (float64, error) {
	return parseFinite(strings.TrimSpace(text))
}

// ParseReviewCount reads the first whitespace separated token as a base-10
// integer, so "42 reviews" yields 42
func ParseReviewCount(text string) (int64, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0, fmt.Errorf("%w: empty review count", ErrMalformed)
	}
	n, err := strconv.ParseInt(tokens[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative review count", ErrMalformed)
	}
	return n, nil
}

func parseFinite(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty number", ErrMalformed)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: not a finite number", ErrMalformed)
	}
	return v, nil
}
