// internal/engine/hybrid/detector.go
package hybrid

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Framework names reported by DetectFramework
const (
	FrameworkReact   = "React"
	FrameworkNext    = "Next.js"
	FrameworkVue     = "Vue"
	FrameworkNuxt    = "Nuxt"
	FrameworkAngular = "Angular"
	FrameworkSvelte  = "Svelte"
	FrameworkUnknown = "Unknown"
)

var frameworkMarkers = []struct {
	framework string
	selector  string
}{
	{FrameworkNext, "#__next, script#__NEXT_DATA__"},
	{FrameworkNuxt, "#__nuxt, #__layout"},
	{FrameworkReact, "[data-reactroot], #root, script[src*='react']"},
	{FrameworkAngular, "[ng-app], [ng-version], app-root"},
	{FrameworkVue, "[data-v-app], [data-server-rendered], script[src*='vue']"},
	{FrameworkSvelte, "[class*='svelte-'], #svelte"},
}

// DetectFramework looks for mount points and bundles of common SPA frameworks
func DetectFramework(doc *goquery.Document) string {
	if doc == nil {
		return FrameworkUnknown
	}
	for _, m := range frameworkMarkers {
		if doc.Find(m.selector).Length() > 0 {
			return m.framework
		}
	}
	return FrameworkUnknown
}

// NeedsJavaScript reports whether a statically fetched document looks like
// a shell that only becomes useful after client-side rendering
func NeedsJavaScript(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}

	scripts := doc.Find("script").Length()
	if scripts == 0 {
		return false
	}

	body := doc.Find("body")
	textLen := len(strings.TrimSpace(body.Clone().Find("script, style, noscript").Remove().End().Text()))

	if DetectFramework(doc) != FrameworkUnknown && textLen < 500 {
		return true
	}

	if doc.Find("noscript").Length() > 0 && textLen < 200 {
		return true
	}

	// Many scripts around almost no markup
	if scripts > 5 && body.Find("div").Length() < 3 {
		return true
	}

	return textLen == 0
}
