// internal/engine/metadata/title.go
package metadata

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Title returns the page title, falling back to og:title and then the first h1
func Title(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	if title := clean(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := clean(content); title != "" {
			return title
		}
	}

	return clean(doc.Find("h1").First().Text())
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
