// Package collector runs the collection pipeline: fetch one page, extract a
// bounded list of product records, summarize them and keep the result for
// the session.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/shelf/internal/engine"
	"github.com/law-makers/shelf/internal/engine/metadata"
	"github.com/law-makers/shelf/internal/metrics"
	"github.com/law-makers/shelf/internal/reqctx"
	"github.com/law-makers/shelf/internal/retry"
	"github.com/law-makers/shelf/internal/session"
	"github.com/law-makers/shelf/internal/stats"
	urlutil "github.com/law-makers/shelf/internal/utils/url"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Extractor turns a document into at most limit records
type Extractor interface {
	Extract(doc *goquery.Document, limit int) ([]models.ProductRecord, error)
}

// Request describes one collection run
type Request struct {
	URL       string
	Limit     int
	SessionID string // empty means the result is not retained

	// Timeout bounds each fetch attempt. Zero uses the collector default.
	Timeout time.Duration

	// Attempts is the number of fetch attempts. Values below 2 mean no retry.
	Attempts int
}

// Options wires the collector's dependencies
type Options struct {
	Fetcher   engine.Fetcher
	Extractor Extractor
	Store     session.Store
	Metrics   *metrics.Metrics
	Timeout   time.Duration
	Retry     retry.Config
}

// Collector runs collection requests. It is safe for concurrent use as long
// as its dependencies are.
type Collector struct {
	fetcher   engine.Fetcher
	extractor Extractor
	store     session.Store
	metrics   *metrics.Metrics
	timeout   time.Duration
	retry     retry.Config
}

// New creates a Collector
func New(opts Options) *Collector {
	if opts.Retry.Multiplier == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	return &Collector{
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		store:     opts.Store,
		metrics:   opts.Metrics,
		timeout:   opts.Timeout,
		retry:     opts.Retry,
	}
}

type fetched struct {
	doc    *goquery.Document
	engine string
}

// Collect runs the pipeline. On success the result has been stored for
// req.SessionID; on failure a *CollectionError is returned and the session's
// previous result is left as it was.
func (c *Collector) Collect(ctx context.Context, req Request) (*models.CollectionResult, error) {
	ctx = reqctx.WithRequestContext(ctx, req.SessionID)
	rc := reqctx.GetRequestContext(ctx)

	logger := log.With().
		Str("run_id", rc.RequestID).
		Str("session", req.SessionID).
		Str("url", req.URL).
		Int("limit", req.Limit).
		Logger()

	if err := validate(req); err != nil {
		return nil, c.fail(logger, StageValidate, err)
	}

	logger.Info().Str("fetcher", c.fetcher.Name()).Msg("Collection started")

	page, err := c.fetch(ctx, logger, req)
	if err != nil {
		return nil, c.fail(logger, StageFetch, err)
	}

	records, err := c.extractor.Extract(page.doc, req.Limit)
	if err != nil {
		return nil, c.fail(logger, StageExtract, err)
	}

	summary, err := stats.Summarize(records)
	if errors.Is(err, stats.ErrEmptyInput) {
		return nil, c.fail(logger, StageEmpty, err)
	}
	if err != nil {
		return nil, c.fail(logger, StageSummarize, err)
	}

	result := &models.CollectionResult{
		Records:     records,
		Summary:     summary,
		SourceURL:   req.URL,
		PageTitle:   metadata.Title(page.doc),
		Engine:      page.engine,
		CollectedAt: time.Now().UTC(),
		Duration:    rc.Elapsed(),
	}

	if c.store != nil && req.SessionID != "" {
		c.store.Put(req.SessionID, result.Clone())
	}

	c.metrics.IncRun("ok")
	c.metrics.AddRecords(len(records))

	logger.Info().
		Str("engine", page.engine).
		Int("records", len(records)).
		Float64("avg_price", summary.AvgPrice).
		Int64("total_reviews", summary.TotalReviews).
		Dur("elapsed", result.Duration).
		Msg("Collection completed")

	return result, nil
}

// fetch loads the page, retrying fetch failures when the request allows it
func (c *Collector) fetch(ctx context.Context, logger zerolog.Logger, req Request) (*fetched, error) {
	cfg := c.retry
	cfg.MaxAttempts = max(req.Attempts, 1)
	cfg.Retryable = func(err error) bool {
		return errors.Is(err, engine.ErrFetch)
	}
	cfg.OnRetry = func(attempt int, err error) {
		c.metrics.IncRetry()
		logger.Warn().Err(err).Int("attempt", attempt).Msg("Fetch failed, retrying")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	var out *fetched
	err := retry.WithRetry(ctx, cfg, func(ctx context.Context) error {
		f, err := c.fetchOnce(ctx, req.URL, timeout)
		if err != nil {
			return err
		}
		out = f
		return nil
	})
	return out, err
}

// fetchOnce acquires a page, fetches and releases it on every path
func (c *Collector) fetchOnce(ctx context.Context, url string, timeout time.Duration) (*fetched, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	page, err := c.fetcher.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to release page")
		}
	}()

	doc, err := page.Fetch(ctx, url)
	c.metrics.ObserveFetch(page.Engine(), time.Since(start))
	if err != nil {
		return nil, err
	}

	return &fetched{doc: doc, engine: page.Engine()}, nil
}

func (c *Collector) fail(logger zerolog.Logger, stage Stage, err error) error {
	c.metrics.IncRun(string(stage))

	event := logger.Warn()
	if stage == StageFetch {
		event = logger.Error()
	}
	event.Err(err).Str("stage", string(stage)).Msg("Collection failed")

	return &CollectionError{Stage: stage, Err: err}
}

func validate(req Request) error {
	if req.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", req.Limit)
	}
	return urlutil.ValidateAbsolute(req.URL)
}
