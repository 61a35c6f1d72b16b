package dynamic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/law-makers/shelf/internal/engine"
)

const spaPage = `<html><body><div id="root"></div>
<script>
document.getElementById('root').innerHTML =
  '<div class="product-card"><h2 class="product-name">Widget</h2></div>';
</script></body></html>`

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	f := New(Options{Headless: true, SettleDelay: 100 * time.Millisecond})
	if f.chromePath == "" {
		t.Skip("Chrome not available")
	}
	return f
}

func TestFetch_RendersJavaScript(t *testing.T) {
	f := newTestFetcher(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(spaPage))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := f.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer page.Close()

	doc, err := page.Fetch(ctx, server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := doc.Find(".product-card .product-name").Text(); got != "Widget" {
		t.Errorf("Expected rendered 'Widget', got '%s'", got)
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	f := newTestFetcher(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := f.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer page.Close()

	_, err = page.Fetch(ctx, server.URL)
	var statusErr *engine.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
}

func TestPage_CloseIsIdempotent(t *testing.T) {
	f := newTestFetcher(t)

	page, err := f.Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	page.Close()
	page.Close()

	if _, err := page.Fetch(context.Background(), "http://example.com"); !errors.Is(err, engine.ErrPageClosed) {
		t.Errorf("Expected ErrPageClosed, got %v", err)
	}
}

func TestAllocatorOptions(t *testing.T) {
	base := len(allocatorOptions("", true, "", ""))
	full := len(allocatorOptions("/usr/bin/chromium", true, "ua", "http://proxy:8080"))

	if full != base+3 {
		t.Errorf("Expected %d options, got %d", base+3, full)
	}
}
