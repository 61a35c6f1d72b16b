package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.IncRun("ok")
	m.IncRun("ok")
	m.IncRun("fetch")
	m.AddRecords(12)
	m.AddRecords(-1)
	m.IncRetry()
	m.IncThrottled()
	m.ObserveFetch("static", 150*time.Millisecond)

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 ok runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("fetch")); got != 1 {
		t.Errorf("Expected 1 fetch failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsExtracted); got != 12 {
		t.Errorf("Expected 12 records, got %v", got)
	}
	if got := testutil.ToFloat64(m.FetchRetries); got != 1 {
		t.Errorf("Expected 1 retry, got %v", got)
	}
	if got := testutil.CollectAndCount(m.FetchDuration); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.IncRun("ok")
	m.ObserveFetch("spa", time.Second)
	m.AddRecords(3)
	m.IncRetry()
	m.IncThrottled()
}
