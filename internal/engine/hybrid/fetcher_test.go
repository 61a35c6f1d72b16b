package hybrid

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/shelf/internal/engine"
)

type stubFetcher struct {
	name   string
	html   string
	err    error
	opened int
	pages  []*stubPage
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Open(ctx context.Context) (engine.Page, error) {
	s.opened++
	p := &stubPage{fetcher: s}
	s.pages = append(s.pages, p)
	return p, nil
}

type stubPage struct {
	fetcher *stubFetcher
	closed  int
}

func (p *stubPage) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if p.fetcher.err != nil {
		return nil, p.fetcher.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(p.fetcher.html))
}

func (p *stubPage) Engine() string { return p.fetcher.name }

func (p *stubPage) Close() error {
	p.closed++
	return nil
}

const (
	plainCatalog = `<html><body><div class="product-card"><span class="product-name">Widget</span></div>
		<p>Plenty of server rendered text on this catalog page.</p></body></html>`
	reactShell = `<html><body><div id="root"></div><script src="/static/react.js"></script></body></html>`
)

func TestFetch_StaysStaticForServerRenderedPage(t *testing.T) {
	static := &stubFetcher{name: "static", html: plainCatalog}
	dynamic := &stubFetcher{name: "spa", html: plainCatalog}
	f := New(static, dynamic, nil)

	page, err := f.Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer page.Close()

	if _, err := page.Fetch(context.Background(), "http://example.com"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.Engine() != "static" {
		t.Errorf("Expected static engine, got %s", page.Engine())
	}
	if dynamic.opened != 0 {
		t.Errorf("Expected browser not to be started, opened %d times", dynamic.opened)
	}
}

func TestFetch_EscalatesForSPAShell(t *testing.T) {
	static := &stubFetcher{name: "static", html: reactShell}
	dynamic := &stubFetcher{name: "spa", html: plainCatalog}
	f := New(static, dynamic, nil)

	page, _ := f.Open(context.Background())

	doc, err := page.Fetch(context.Background(), "http://example.com")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if doc.Find(".product-card").Length() != 1 {
		t.Error("Expected the rendered document")
	}
	if page.Engine() != "spa" {
		t.Errorf("Expected spa engine, got %s", page.Engine())
	}

	page.Close()
	if dynamic.pages[0].closed != 1 {
		t.Errorf("Expected browser page closed once, got %d", dynamic.pages[0].closed)
	}
	if static.pages[0].closed != 1 {
		t.Errorf("Expected static page closed once, got %d", static.pages[0].closed)
	}
}

func TestFetch_ContentCheckSkipsEscalation(t *testing.T) {
	shellWithCards := `<html><body><div id="root"><div class="product-card"></div></div><script></script></body></html>`
	static := &stubFetcher{name: "static", html: shellWithCards}
	dynamic := &stubFetcher{name: "spa"}
	check := func(doc *goquery.Document) bool {
		return doc.Find(".product-card").Length() > 0
	}

	page, _ := New(static, dynamic, check).Open(context.Background())
	defer page.Close()

	if _, err := page.Fetch(context.Background(), "http://example.com"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if dynamic.opened != 0 {
		t.Error("Expected the content check to keep the static document")
	}
}

func TestFetch_StaticErrorIsReturned(t *testing.T) {
	static := &stubFetcher{name: "static", err: engine.NewFetchError("static", "u", errors.New("boom"))}
	dynamic := &stubFetcher{name: "spa"}

	page, _ := New(static, dynamic, nil).Open(context.Background())
	defer page.Close()

	if _, err := page.Fetch(context.Background(), "http://example.com"); !errors.Is(err, engine.ErrFetch) {
		t.Errorf("Expected ErrFetch, got %v", err)
	}
}

func TestDetectFramework(t *testing.T) {
	tests := []struct {
		html string
		want string
	}{
		{`<div id="__next"></div>`, FrameworkNext},
		{`<div data-reactroot=""></div>`, FrameworkReact},
		{`<app-root ng-version="17"></app-root>`, FrameworkAngular},
		{`<div data-v-app></div>`, FrameworkVue},
		{`<p>plain</p>`, FrameworkUnknown},
	}

	for _, tt := range tests {
		doc, _ := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
		if got := DetectFramework(doc); got != tt.want {
			t.Errorf("DetectFramework(%q) = %s, want %s", tt.html, got, tt.want)
		}
	}
}

func TestNeedsJavaScript(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"no scripts", plainCatalog, false},
		{"react shell", reactShell, true},
		{"empty body with script", `<html><body><script>render()</script></body></html>`, true},
		{"noscript warning", `<html><body><noscript>Enable JavaScript</noscript><script></script></body></html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if got := NeedsJavaScript(doc); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
