// internal/engine/dynamic/fetcher.go
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/shelf/internal/engine"
	"github.com/law-makers/shelf/internal/proxy"
	"github.com/rs/zerolog/log"
)

// Name is the engine name reported by browser-rendered pages
const Name = "spa"

// DefaultSettleDelay gives client-side scripts time to render after load
const DefaultSettleDelay = 500 * time.Millisecond

// Options configures the headless Chrome fetcher
type Options struct {
	ChromePath string
	Headless   bool
	UserAgent  string
	Headers    map[string]string
	Proxies    *proxy.Pool

	// WaitSelector, when set, must become visible before the DOM is read
	WaitSelector string
	SettleDelay  time.Duration
}

// Fetcher renders pages in headless Chrome through chromedp.
// Every Open starts a dedicated browser process which Close kills.
type Fetcher struct {
	opts       Options
	chromePath string
}

// New creates a dynamic Fetcher. Chrome is located once here.
func New(opts Options) *Fetcher {
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	return &Fetcher{
		opts:       opts,
		chromePath: FindChrome(opts.ChromePath),
	}
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return Name
}

// Open launches Chrome. The browser lives until Close or until ctx is done,
// whichever comes first.
func (f *Fetcher) Open(ctx context.Context) (engine.Page, error) {
	start := time.Now()
	proxyServer := f.opts.Proxies.Next()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		allocatorOptions(f.chromePath, f.opts.Headless, f.opts.UserAgent, proxyServer)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	p := &page{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		opts:          f.opts,
		proxy:         proxyServer,
	}

	// A Run without actions starts the browser so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		p.Close()
		f.opts.Proxies.MarkFailed(proxyServer)
		if f.chromePath == "" {
			err = fmt.Errorf("%w: %w", engine.ErrBrowserNotFound, err)
		}
		return nil, engine.NewFetchError(Name, "", fmt.Errorf("%w: %w", engine.ErrBrowserLaunch, err))
	}

	chromedp.ListenTarget(browserCtx, p.onEvent)

	log.Debug().
		Str("chrome", f.chromePath).
		Str("proxy", proxyServer).
		Dur("elapsed", time.Since(start)).
		Msg("Browser started")

	return p, nil
}

type page struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	opts          Options
	proxy         string

	mu          sync.Mutex
	status      int64
	statusText  string
	gotDocument bool

	closeOnce sync.Once
	closed    bool
}

func (p *page) Engine() string {
	return Name
}

// onEvent records the status of the first document response of a navigation
func (p *page) onEvent(ev interface{}) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gotDocument {
		return
	}
	p.gotDocument = true
	p.status = resp.Response.Status
	p.statusText = resp.Response.StatusText
}

func (p *page) resetStatus() {
	p.mu.Lock()
	p.gotDocument = false
	p.status = 0
	p.statusText = ""
	p.mu.Unlock()
}

func (p *page) documentStatus() (int64, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.statusText
}

// Fetch navigates, waits for rendering to settle and returns the live DOM
func (p *page) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, engine.NewFetchError(Name, url, engine.ErrPageClosed)
	}

	start := time.Now()

	runCtx, cancel := context.WithCancel(p.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	p.resetStatus()

	tasks := chromedp.Tasks{network.Enable()}
	if len(p.opts.Headers) > 0 {
		headers := make(network.Headers, len(p.opts.Headers))
		for k, v := range p.opts.Headers {
			headers[k] = v
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if p.opts.WaitSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(p.opts.WaitSelector, chromedp.ByQuery))
	}
	if p.opts.SettleDelay > 0 {
		tasks = append(tasks, chromedp.Sleep(p.opts.SettleDelay))
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(runCtx, tasks); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", engine.ErrTimeout, err)
		}
		p.opts.Proxies.MarkFailed(p.proxy)
		return nil, engine.NewFetchError(Name, url, fmt.Errorf("render failed: %w", err))
	}
	p.opts.Proxies.MarkHealthy(p.proxy)

	if status, text := p.documentStatus(); status >= 400 {
		return nil, engine.NewFetchError(Name, url, &engine.StatusError{
			StatusCode: int(status),
			Status:     strings.TrimSpace(fmt.Sprintf("%d %s", status, text)),
		})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, engine.NewFetchError(Name, url, fmt.Errorf("failed to parse rendered HTML: %w", err))
	}

	log.Debug().
		Str("url", url).
		Int("html_bytes", len(html)).
		Dur("elapsed", time.Since(start)).
		Msg("Rendered fetch completed")

	return doc, nil
}

// Close cancels the browser and its allocator, terminating the Chrome process
func (p *page) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		p.browserCancel()
		p.allocCancel()
		log.Debug().Msg("Browser closed")
	})
	return nil
}
