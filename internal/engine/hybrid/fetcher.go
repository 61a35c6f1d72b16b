// internal/engine/hybrid/fetcher.go
package hybrid

import (
	"context"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/shelf/internal/engine"
	"github.com/rs/zerolog/log"
)

// Name is the name of the auto-selecting fetcher
const Name = "auto"

// ContentCheck reports whether a document already carries the content the caller
// is after. A satisfied check keeps the static result.
type ContentCheck func(doc *goquery.Document) bool

// Fetcher tries a plain HTTP fetch first and escalates to a browser when the
// page turns out to be rendered client-side.
type Fetcher struct {
	static  engine.Fetcher
	dynamic engine.Fetcher
	check   ContentCheck
}

// New creates an auto Fetcher. check may be nil.
func New(static, dynamic engine.Fetcher, check ContentCheck) *Fetcher {
	return &Fetcher{static: static, dynamic: dynamic, check: check}
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return Name
}

// Open acquires the static page. The browser is only started on escalation.
func (f *Fetcher) Open(ctx context.Context) (engine.Page, error) {
	sp, err := f.static.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &page{fetcher: f, static: sp, served: f.static.Name()}, nil
}

type page struct {
	fetcher *Fetcher
	static  engine.Page

	mu      sync.Mutex
	dynamic engine.Page
	served  string
	closed  bool
}

func (p *page) Engine() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.served
}

func (p *page) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	doc, err := p.static.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if p.fetcher.check != nil && p.fetcher.check(doc) {
		p.setServed(p.static.Engine())
		return doc, nil
	}
	if !NeedsJavaScript(doc) {
		p.setServed(p.static.Engine())
		return doc, nil
	}

	log.Debug().
		Str("url", url).
		Str("framework", DetectFramework(doc)).
		Msg("Page needs JavaScript, escalating to browser")

	dp, err := p.browser(ctx)
	if err != nil {
		return nil, err
	}

	doc, err = dp.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	p.setServed(dp.Engine())
	return doc, nil
}

func (p *page) browser(ctx context.Context) (engine.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, engine.NewFetchError(Name, "", engine.ErrPageClosed)
	}
	if p.dynamic != nil {
		return p.dynamic, nil
	}
	dp, err := p.fetcher.dynamic.Open(ctx)
	if err != nil {
		return nil, err
	}
	p.dynamic = dp
	return dp, nil
}

func (p *page) setServed(name string) {
	p.mu.Lock()
	p.served = name
	p.mu.Unlock()
}

// Close releases the static page and the browser, if one was started
func (p *page) Close() error {
	err := p.static.Close()

	p.mu.Lock()
	p.closed = true
	dp := p.dynamic
	p.mu.Unlock()

	if dp != nil {
		if derr := dp.Close(); err == nil {
			err = derr
		}
	}
	return err
}
