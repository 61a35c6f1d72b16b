package report

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/shelf/internal/stats"
	"github.com/law-makers/shelf/pkg/models"
	"golang.org/x/net/html"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"price":  FormatPrice,
	"rating": FormatRating,
	"inc":    func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Result.PageTitle}}{{.Result.PageTitle}}{{else}}Product report{{end}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td, th { padding: 0.25rem 0.75rem; border-bottom: 1px solid #ddd; text-align: left; }
</style>
</head>
<body>
<h1>{{if .Result.PageTitle}}{{.Result.PageTitle}}{{else}}Product report{{end}}</h1>
<p>Source: <a href="{{.Result.SourceURL}}">{{.Result.SourceURL}}</a></p>
<h2>Summary</h2>
<table class="metrics">
<thead><tr><th>Metric</th><th>Value</th></tr></thead>
<tbody>
{{range .Metrics}}<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>
{{end}}</tbody>
</table>
{{if .Bins}}<h2>Price Distribution</h2>
<table class="histogram">
<thead><tr><th>From</th><th>To</th><th>Products</th></tr></thead>
<tbody>
{{range .Bins}}<tr><td>{{price .Lower}}</td><td>{{price .Upper}}</td><td>{{.Count}}</td></tr>
{{end}}</tbody>
</table>
{{end}}<h2>Products</h2>
<table class="records">
<thead><tr><th>#</th><th>Name</th><th>Price</th><th>Rating</th><th>Reviews</th></tr></thead>
<tbody>
{{range $i, $r := .Result.Records}}<tr><td>{{inc $i}}</td><td>{{$r.Name}}</td><td>{{price $r.Price}}</td><td>{{rating $r.Rating}}</td><td>{{$r.ReviewCount}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type reportView struct {
	Result  *models.CollectionResult
	Metrics []Metric
	Bins    []stats.Bin
}

// HTML renders a standalone HTML report of a collection result
func HTML(result *models.CollectionResult) (string, error) {
	view := reportView{Result: result, Metrics: Metrics(result.Summary)}
	if bins, err := stats.Histogram(result.Records, stats.DefaultBins); err == nil {
		view.Bins = bins
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CleanHTML drops non-content elements and every attribute except link
// targets so the markup converts cleanly
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("head, script, style, link, meta, noscript, iframe, svg, form").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			if node.Data == "a" && (attr.Key == "href" || attr.Key == "title") {
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
