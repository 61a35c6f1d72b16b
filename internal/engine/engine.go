package engine

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher is implemented by every page-fetching engine.
//
// Open acquires whatever the engine needs to load a page (an HTTP transport,
// a Chrome process) and hands it out as a Page. The caller owns the Page and
// must Close it on every exit path.
type Fetcher interface {
	// Name returns the name of the fetcher implementation
	Name() string

	// Open acquires the underlying resource
	Open(ctx context.Context) (Page, error)
}

// Page is an acquired fetcher resource.
type Page interface {
	// Fetch loads the URL and returns the fully rendered document
	Fetch(ctx context.Context, url string) (*goquery.Document, error)

	// Engine reports which engine served the last successful Fetch
	Engine() string

	// Close releases the resource. Calling it more than once is safe.
	Close() error
}
