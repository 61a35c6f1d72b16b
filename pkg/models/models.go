package models

import "time"

// ProductRecord is one product listing read from a page
type ProductRecord struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int64   `json:"review_count"`
}

// PriceRange holds the lowest and highest price of a collection
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summary holds the aggregate statistics computed over a set of records
type Summary struct {
	AvgPrice     float64    `json:"avg_price"`
	AvgRating    float64    `json:"avg_rating"`
	TotalReviews int64      `json:"total_reviews"`
	PriceRange   PriceRange `json:"price_range"`
}

// CollectionResult is the output of one successful collection run.
// Summary is always derived from Records; the two are never updated separately.
// A result handed to a session store belongs to the store; callers that keep
// using it pass a Clone instead.
type CollectionResult struct {
	Records     []ProductRecord `json:"records"`
	Summary     Summary         `json:"summary"`
	SourceURL   string          `json:"source_url"`
	PageTitle   string          `json:"page_title,omitempty"`
	Engine      string          `json:"engine"`
	CollectedAt time.Time       `json:"collected_at"`
	Duration    time.Duration   `json:"duration_ns"`
}

// Clone returns a copy that shares no Records backing array with r
func (r *CollectionResult) Clone() *CollectionResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Records != nil {
		out.Records = append([]ProductRecord(nil), r.Records...)
	}
	return &out
}

// ErrorDetail is the presentation-facing description of a failed run
type ErrorDetail struct {
	Code    string `json:"code"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Outcome is what a controller hands to the presentation layer after a run
type Outcome struct {
	OK     bool              `json:"ok"`
	Result *CollectionResult `json:"result,omitempty"`
	Error  *ErrorDetail      `json:"error,omitempty"`
}

// FetchMode selects the page fetcher
type FetchMode string

const (
	ModeAuto   FetchMode = "auto"
	ModeStatic FetchMode = "static"
	ModeSPA    FetchMode = "spa"
)
