package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for collection runs.
// All helpers are safe to call on a nil *Metrics.
type Metrics struct {
	Registry         *prometheus.Registry
	RunsTotal        *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	RecordsExtracted prometheus.Counter
	FetchRetries     prometheus.Counter
	ThrottledTotal   prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shelf_collections_total",
			Help: "Collection runs by outcome (ok or the failing stage).",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shelf_fetch_duration_seconds",
			Help:    "Time spent acquiring and rendering the target page.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"engine"},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shelf_records_extracted_total",
			Help: "Total product records extracted by successful runs.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shelf_fetch_retries_total",
			Help: "Total fetch retry attempts scheduled.",
		},
	)
	throttled := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shelf_collect_throttled_total",
			Help: "Collect requests rejected by the per-session throttle.",
		},
	)

	registry.MustRegister(runs, fetchDuration, records, retries, throttled)

	return &Metrics{
		Registry:         registry,
		RunsTotal:        runs,
		FetchDuration:    fetchDuration,
		RecordsExtracted: records,
		FetchRetries:     retries,
		ThrottledTotal:   throttled,
	}
}

// IncRun counts a finished run under its outcome label
func (m *Metrics) IncRun(outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records how long a fetch took on the given engine
func (m *Metrics) ObserveFetch(engine string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// AddRecords adds to the extracted records counter
func (m *Metrics) AddRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsExtracted.Add(float64(n))
}

// IncRetry increments the retries counter
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.FetchRetries.Inc()
}

// IncThrottled increments the throttled requests counter
func (m *Metrics) IncThrottled() {
	if m == nil {
		return
	}
	m.ThrottledTotal.Inc()
}
