package server

import (
	"html/template"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/shelf/internal/config"
	"github.com/law-makers/shelf/internal/report"
	"github.com/law-makers/shelf/internal/stats"
	"github.com/law-makers/shelf/pkg/models"
)

type barView struct {
	Label   string
	Count   int
	Percent int
}

// Plot geometry of the price/rating scatter, in SVG user units
const (
	plotWidth   = 640
	plotHeight  = 320
	plotPad     = 32
	minRadius   = 3.0
	maxRadius   = 18.0
	ratingScale = 5.0
)

// pointView is one scatter marker. Marker area grows with review count.
type pointView struct {
	stats.Point
	X, Y, R float64
}

type dashboardView struct {
	Flash   string
	URL     string
	Limits  config.LimitConfig
	Result  *models.CollectionResult
	Metrics []report.Metric
	Bars    []barView
	Points  []pointView
	Plot    struct{ Width, Height, Pad int }
}

// dashboard handles GET /
func (s *Server) dashboard(c *gin.Context) {
	view := dashboardView{
		Flash:  s.takeFlash(c),
		Limits: s.opts.Limits,
	}
	view.Plot.Width, view.Plot.Height, view.Plot.Pad = plotWidth, plotHeight, plotPad

	if result, ok := s.opts.Store.Get(s.sessionID(c)); ok {
		view.Result = result
		view.URL = result.SourceURL
		view.Metrics = report.Metrics(result.Summary)
		view.Points = plot(stats.Scatter(result.Records), result.Summary.PriceRange)
		if bins, err := stats.Histogram(result.Records, stats.DefaultBins); err == nil {
			view.Bars = bars(bins)
		}
	}

	c.HTML(http.StatusOK, "dashboard", view)
}

func bars(bins []stats.Bin) []barView {
	peak := stats.MaxCount(bins)
	out := make([]barView, len(bins))
	for i, b := range bins {
		out[i] = barView{
			Label: report.FormatPrice(b.Lower) + " - " + report.FormatPrice(b.Upper),
			Count: b.Count,
		}
		if peak > 0 {
			out[i].Percent = b.Count * 100 / peak
		}
	}
	return out
}

// plot places points by price (x) and rating (y) and sizes them by review
// count relative to the most reviewed product
func plot(points []stats.Point, pr models.PriceRange) []pointView {
	peak := stats.MaxSize(points)
	span := pr.Max - pr.Min
	innerW := float64(plotWidth - 2*plotPad)
	innerH := float64(plotHeight - 2*plotPad)

	out := make([]pointView, len(points))
	for i, p := range points {
		x := 0.5
		if span > 0 && !math.IsInf(span, 0) {
			x = clamp01((p.Price - pr.Min) / span)
		}
		y := clamp01(p.Rating / ratingScale)

		r := minRadius
		if peak > 0 && p.Size > 0 {
			r += (maxRadius - minRadius) * math.Sqrt(float64(p.Size)/float64(peak))
		}

		out[i] = pointView{
			Point: p,
			X:     math.Round(plotPad + x*innerW),
			Y:     math.Round(plotHeight - plotPad - y*innerH),
			R:     math.Round(r*10) / 10,
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"price":  report.FormatPrice,
	"rating": report.FormatRating,
	"inc":    func(i int) int { return i + 1 },
	"sub":    func(a, b int) int { return a - b },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Shelf</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 960px; color: #222; }
form { display: flex; gap: 0.5rem; margin-bottom: 1.5rem; }
input[type=url] { flex: 1; padding: 0.4rem; }
.error { background: #fdecea; color: #a61b1b; padding: 0.75rem; border-radius: 4px; margin-bottom: 1rem; }
.metrics { display: grid; grid-template-columns: repeat(4, 1fr); gap: 1rem; margin: 1rem 0; }
.metric { background: #f4f6f8; padding: 0.75rem; border-radius: 4px; }
.metric .value { font-size: 1.4rem; font-weight: bold; }
.bar { display: flex; align-items: center; gap: 0.5rem; font-size: 0.85rem; }
.bar .label { width: 11rem; text-align: right; }
.bar .fill { background: #3b82f6; height: 0.9rem; }
.scatter circle { fill: #3b82f6; fill-opacity: 0.55; stroke: #1e40af; }
.scatter line { stroke: #9ca3af; }
.scatter text { font-size: 11px; fill: #555; }
table { border-collapse: collapse; width: 100%; margin-top: 0.5rem; }
td, th { padding: 0.3rem 0.6rem; border-bottom: 1px solid #e5e7eb; text-align: left; }
</style>
</head>
<body>
<h1>Shelf</h1>
<form method="post" action="/collect">
<input type="url" name="url" placeholder="https://shop.example/products" value="{{.URL}}" required>
<input type="number" name="limit" min="{{.Limits.Min}}" max="{{.Limits.Max}}" value="{{.Limits.Default}}">
<button type="submit">Collect Data</button>
</form>
{{with .Flash}}<div class="error" role="alert">{{.}}</div>
{{end}}{{with .Result}}
<p>{{if .PageTitle}}<strong>{{.PageTitle}}</strong> {{end}}<a href="{{.SourceURL}}">{{.SourceURL}}</a> ({{len .Records}} products via {{.Engine}})</p>
<div class="metrics">
{{range $.Metrics}}<div class="metric"><div>{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>
<h2>Price Distribution</h2>
{{range $.Bars}}<div class="bar"><span class="label">{{.Label}}</span><span class="fill" style="width: {{.Percent}}%"></span><span>{{.Count}}</span></div>
{{end}}
<h2>Price vs Rating</h2>
<svg class="scatter" viewBox="0 0 {{$.Plot.Width}} {{$.Plot.Height}}" width="100%" role="img" aria-label="Price vs rating, marker size by review count">
<line x1="{{$.Plot.Pad}}" y1="{{sub $.Plot.Height $.Plot.Pad}}" x2="{{sub $.Plot.Width $.Plot.Pad}}" y2="{{sub $.Plot.Height $.Plot.Pad}}"></line>
<line x1="{{$.Plot.Pad}}" y1="{{$.Plot.Pad}}" x2="{{$.Plot.Pad}}" y2="{{sub $.Plot.Height $.Plot.Pad}}"></line>
<text x="{{$.Plot.Pad}}" y="{{sub $.Plot.Height 8}}">{{price .Summary.PriceRange.Min}}</text>
<text x="{{sub $.Plot.Width $.Plot.Pad}}" y="{{sub $.Plot.Height 8}}" text-anchor="end">{{price .Summary.PriceRange.Max}}</text>
<text x="4" y="{{$.Plot.Pad}}">5.0</text>
{{range $.Points}}<circle cx="{{.X}}" cy="{{.Y}}" r="{{.R}}"><title>{{.Label}}: {{price .Price}}, {{rating .Rating}}, {{.Size}} reviews</title></circle>
{{end}}</svg>
<table>
<thead><tr><th>Product</th><th>Price</th><th>Rating</th><th>Reviews</th></tr></thead>
<tbody>
{{range $.Points}}<tr><td>{{.Label}}</td><td>{{price .Price}}</td><td>{{rating .Rating}}</td><td>{{.Size}}</td></tr>
{{end}}</tbody>
</table>
<h2>Raw Data</h2>
<p><a href="/api/v1/result/export/csv">CSV</a> · <a href="/api/v1/result/export/json">JSON</a> · <a href="/api/v1/result/export/md">Markdown</a></p>
<table>
<thead><tr><th>#</th><th>Name</th><th>Price</th><th>Rating</th><th>Reviews</th></tr></thead>
<tbody>
{{range $i, $r := .Records}}<tr><td>{{inc $i}}</td><td>{{$r.Name}}</td><td>{{price $r.Price}}</td><td>{{$r.Rating}}</td><td>{{$r.ReviewCount}}</td></tr>
{{end}}</tbody>
</table>
{{else}}<p>No data collected yet. Enter a product listing URL to begin.</p>
{{end}}
</body>
</html>
`))
