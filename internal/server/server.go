// Package server serves the interactive dashboard and its JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/law-makers/shelf/internal/collector"
	"github.com/law-makers/shelf/internal/config"
	"github.com/law-makers/shelf/internal/metrics"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/internal/session"
	"github.com/law-makers/shelf/pkg/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// Collector runs one collection for a session
type Collector interface {
	Collect(ctx context.Context, req collector.Request) (*models.CollectionResult, error)
}

// Options wires the server's dependencies
type Options struct {
	Collector Collector
	Store     session.Store
	Metrics   *metrics.Metrics
	Limits    config.LimitConfig

	// Throttle limits collect requests per session. Nil disables it.
	Throttle ratelimit.RateLimiter

	// Attempts is the number of fetch attempts per collection
	Attempts int

	// SecureCookie marks the session cookie Secure
	SecureCookie bool

	// FlashSessions bounds the number of pending flash messages
	FlashSessions int
}

// Server is the dashboard HTTP server
type Server struct {
	opts      Options
	flashes   *lru.Cache[string, string]
	startTime time.Time
}

// New creates a Server
func New(opts Options) (*Server, error) {
	if opts.Collector == nil || opts.Store == nil {
		return nil, errors.New("collector and store are required")
	}
	if opts.FlashSessions <= 0 {
		opts.FlashSessions = config.DefaultThrottleSessions
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	flashes, err := lru.New[string, string](opts.FlashSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to create flash table: %w", err)
	}

	return &Server{opts: opts, flashes: flashes, startTime: time.Now()}, nil
}

// Router builds the gin engine.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Session
//	Collect: Throttle
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(dashboardTemplate)
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(sessionCookie(s.opts.SecureCookie))

	throttle := throttled(s.opts.Throttle, s.opts.Metrics)

	r.GET("/", s.dashboard)
	r.POST("/collect", throttle, s.collectForm)

	v1 := r.Group("/api/v1")
	v1.GET("/health", s.health)
	v1.GET("/result", s.getResult)
	v1.DELETE("/result", s.clearResult)
	v1.GET("/result/export/:format", s.exportResult)
	v1.GET("/distribution", s.distribution)
	v1.POST("/collect", throttle, s.collectJSON)

	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Dashboard listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	return <-errCh
}
