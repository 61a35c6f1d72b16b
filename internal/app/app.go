// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/law-makers/shelf/internal/collector"
	"github.com/law-makers/shelf/internal/config"
	"github.com/law-makers/shelf/internal/engine"
	"github.com/law-makers/shelf/internal/engine/dynamic"
	"github.com/law-makers/shelf/internal/engine/hybrid"
	"github.com/law-makers/shelf/internal/engine/static"
	"github.com/law-makers/shelf/internal/extract"
	"github.com/law-makers/shelf/internal/metrics"
	"github.com/law-makers/shelf/internal/proxy"
	"github.com/law-makers/shelf/internal/session"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Store      *session.MemoryStore
	Metrics    *metrics.Metrics
	Proxies    *proxy.Pool
	HTTPClient *http.Client
	Extractor  *extract.Extractor
	Fetcher    engine.Fetcher
	Collector  *collector.Collector
	startTime  time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Compiles the extractor selectors
//   - Builds the proxy pool and HTTP client
//   - Selects the page fetcher for the configured mode
//   - Creates the session store, metrics and the collector
//
// Chrome is never started here; the dynamic fetcher launches a browser per run.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := setupLogging(cfg)

	ex, err := extract.New(cfg.Selectors)
	if err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}
	logger.Debug().
		Str("card", ex.Selectors().Card).
		Msg("Extractor initialized")

	proxies := proxy.NewPool(cfg.Proxies, cfg.ProxyCooldown)
	logger.Debug().
		Int("proxies", proxies.Len()).
		Dur("cooldown", cfg.ProxyCooldown).
		Msg("Proxy pool initialized")

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	a := &Application{
		Config:     cfg,
		Logger:     &logger,
		Metrics:    metrics.New(),
		Proxies:    proxies,
		HTTPClient: httpClient,
		Extractor:  ex,
		startTime:  time.Now(),
	}

	a.Fetcher, err = a.FetcherFor(models.FetchMode(cfg.Mode))
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("fetcher", a.Fetcher.Name()).Msg("Fetcher initialized")

	a.Store = session.NewMemoryStore(cfg.Server.SessionTTL)
	a.Collector = collector.New(collector.Options{
		Fetcher:   a.Fetcher,
		Extractor: ex,
		Store:     a.Store,
		Metrics:   a.Metrics,
		Timeout:   cfg.HTTPTimeout,
	})

	logger.Info().Msg("Application initialized successfully")
	return a, nil
}

// setupLogging sets the global zerolog level and output from cfg
func setupLogging(cfg *config.Config) zerolog.Logger {
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug", "trace":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	return logger
}

// FetcherFor builds the page fetcher for mode
func (a *Application) FetcherFor(mode models.FetchMode) (engine.Fetcher, error) {
	cfg := a.Config

	staticFetcher := static.New(static.Options{
		Client:    a.HTTPClient,
		UserAgent: cfg.UserAgent,
		Headers:   cfg.Headers,
		Proxies:   a.Proxies,
	})
	dynamicFetcher := func() *dynamic.Fetcher {
		return dynamic.New(dynamic.Options{
			ChromePath:   cfg.Browser.ChromePath,
			Headless:     cfg.Browser.Headless,
			UserAgent:    cfg.UserAgent,
			Headers:      cfg.Headers,
			Proxies:      a.Proxies,
			WaitSelector: cfg.Browser.WaitSelector,
			SettleDelay:  cfg.Browser.SettleDelay,
		})
	}

	switch mode {
	case models.ModeStatic:
		return staticFetcher, nil
	case models.ModeSPA:
		return dynamicFetcher(), nil
	case models.ModeAuto, "":
		return hybrid.New(staticFetcher, dynamicFetcher(), a.Extractor.HasCandidates), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", mode)
	}
}

// Close gracefully shuts down the application and all its resources.
//
// Browsers are owned by individual runs and are already gone once their
// collection returns, so only the session store and idle connections remain.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Store != nil {
		a.Store.Close()
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Info().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return ctx.Err()
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
