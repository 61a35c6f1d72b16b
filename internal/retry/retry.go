// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxAttempts          int           // Total attempts, including the first
	InitialBackoff       time.Duration // Initial backoff duration
	MaxBackoff           time.Duration // Maximum backoff duration
	Multiplier           float64       // Backoff multiplier
	RetryableStatusCodes []int         // HTTP status codes that should trigger retry

	// Retryable narrows which errors are retried at all. Nil retries everything
	// that passes the status and timeout checks.
	Retryable func(error) bool

	// OnRetry is called before each backoff sleep
	OnRetry func(attempt int, err error)
}

// DefaultConfig returns a single attempt, which means no retry
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    1,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		RetryableStatusCodes: []int{
			http.StatusTooManyRequests,     // 429
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		},
	}
}

// StatusCoder is implemented by errors that carry an HTTP status code
type StatusCoder interface {
	GetStatusCode() int
}

// WithRetry runs fn until it succeeds, the error is not retryable, the
// attempts are used up or ctx is done. The last error is returned unwrapped
// when only one attempt was allowed.
func WithRetry(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Debug().Int("attempts", attempt+1).Msg("Retry succeeded")
			}
			return nil
		}

		lastErr = err

		if cfg.MaxAttempts == 1 {
			return err
		}

		if ctx.Err() != nil || !shouldRetry(err, cfg) {
			log.Debug().Err(err).Msg("Error is not retryable")
			return err
		}

		if attempt < cfg.MaxAttempts-1 {
			backoff := calculateBackoff(attempt, cfg)

			log.Debug().
				Int("attempt", attempt+1).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt+1, err)
			}

			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			}
		}
	}

	log.Warn().
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// calculateBackoff calculates the backoff duration for the given attempt
func calculateBackoff(attempt int, cfg Config) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}

// shouldRetry determines if an error is retryable
func shouldRetry(err error, cfg Config) bool {
	if err == nil {
		return false
	}

	if cfg.Retryable != nil && !cfg.Retryable(err) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.GetStatusCode()
		for _, c := range cfg.RetryableStatusCodes {
			if code == c {
				return true
			}
		}
		return false
	}

	// Network failures and timeouts
	return true
}
