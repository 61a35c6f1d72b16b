// internal/engine/static/fetcher.go
package static

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/shelf/internal/engine"
	"github.com/law-makers/shelf/internal/proxy"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// Name is the engine name reported by static pages
const Name = "static"

// Options configures the static fetcher
type Options struct {
	// Client is used as-is when no proxy is configured. Nil means a fresh client.
	Client    *http.Client
	UserAgent string
	Headers   map[string]string
	Proxies   *proxy.Pool
}

// Fetcher loads pages with plain HTTP requests and parses them with goquery.
// It does not run JavaScript.
type Fetcher struct {
	opts Options
}

// New creates a static Fetcher
func New(opts Options) *Fetcher {
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	return &Fetcher{opts: opts}
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return Name
}

// Open picks the proxy for this run and returns a page bound to it
func (f *Fetcher) Open(ctx context.Context) (engine.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, engine.NewFetchError(Name, "", err)
	}

	p := &page{
		client:    f.opts.Client,
		userAgent: f.opts.UserAgent,
		headers:   f.opts.Headers,
		proxies:   f.opts.Proxies,
	}

	if proxyAddr := f.opts.Proxies.Next(); proxyAddr != "" {
		proxyURL, err := url.Parse(proxyAddr)
		if err != nil {
			f.opts.Proxies.MarkFailed(proxyAddr)
			return nil, engine.NewFetchError(Name, "", fmt.Errorf("invalid proxy %q: %w", proxyAddr, err))
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		p.client = &http.Client{
			Transport:     transport,
			Timeout:       f.opts.Client.Timeout,
			CheckRedirect: f.opts.Client.CheckRedirect,
			Jar:           f.opts.Client.Jar,
		}
		p.proxy = proxyAddr
		p.ownsTransport = true
		log.Debug().Str("proxy", proxyAddr).Msg("Using proxy")
	}

	return p, nil
}

type page struct {
	client        *http.Client
	userAgent     string
	headers       map[string]string
	proxies       *proxy.Pool
	proxy         string
	ownsTransport bool
	closed        atomic.Bool
}

func (p *page) Engine() string {
	return Name
}

// Fetch performs a GET request and parses the charset-decoded body
func (p *page) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if p.closed.Load() {
		return nil, engine.NewFetchError(Name, rawURL, engine.ErrPageClosed)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, engine.NewFetchError(Name, rawURL, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	for key, value := range p.headers {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.proxies.MarkFailed(p.proxy)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", engine.ErrTimeout, err)
		}
		return nil, engine.NewFetchError(Name, rawURL, err)
	}
	defer resp.Body.Close()
	p.proxies.MarkHealthy(p.proxy)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, engine.NewFetchError(Name, rawURL, &engine.StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, engine.NewFetchError(Name, rawURL, fmt.Errorf("failed to decode body: %w", err))
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, engine.NewFetchError(Name, rawURL, fmt.Errorf("failed to parse HTML: %w", err))
	}
	doc.Url = req.URL
	if resp.Request != nil {
		doc.Url = resp.Request.URL
	}

	log.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Static fetch completed")

	return doc, nil
}

// Close drops idle connections of a per-run proxy transport
func (p *page) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if p.ownsTransport {
		p.client.CloseIdleConnections()
	}
	return nil
}
