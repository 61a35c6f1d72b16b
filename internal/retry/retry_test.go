package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string      { return "status" }
func (e statusErr) GetStatusCode() int { return int(e) }

func fastConfig(attempts int) Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	retries := 0
	cfg := fastConfig(3)
	cfg.OnRetry = func(int, error) { retries++ }

	err := WithRetry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if retries != 2 {
		t.Errorf("Expected 2 retry callbacks, got %d", retries)
	}
}

func TestWithRetry_SingleAttemptReturnsErrorAsIs(t *testing.T) {
	sentinel := errors.New("boom")
	err := WithRetry(context.Background(), DefaultConfig(), func(ctx context.Context) error {
		return sentinel
	})
	if err != sentinel {
		t.Errorf("Expected the original error, got %v", err)
	}
}

func TestWithRetry_NonRetryableStatus(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return statusErr(404)
	})

	if calls != 1 {
		t.Errorf("Expected 1 call for 404, got %d", calls)
	}
	if err == nil {
		t.Error("Expected error")
	}
}

func TestWithRetry_RetryableStatus(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		return statusErr(503)
	})

	if calls != 2 {
		t.Errorf("Expected 2 calls for 503, got %d", calls)
	}
	var sc StatusCoder
	if !errors.As(err, &sc) || sc.GetStatusCode() != 503 {
		t.Errorf("Expected wrapped status error, got %v", err)
	}
}

func TestWithRetry_PredicateStopsRetry(t *testing.T) {
	permanent := errors.New("bad markup")
	cfg := fastConfig(5)
	cfg.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	WithRetry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return permanent
	})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	cfg.OnRetry = func(int, error) { cancel() }

	calls := 0
	err := WithRetry(ctx, cfg, func(ctx context.Context) error {
		calls++
		return errors.New("flaky")
	})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if err == nil {
		t.Error("Expected error after cancellation")
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second, Multiplier: 2}

	if got := calculateBackoff(0, cfg); got != time.Second {
		t.Errorf("Expected 1s, got %v", got)
	}
	if got := calculateBackoff(2, cfg); got != 4*time.Second {
		t.Errorf("Expected 4s, got %v", got)
	}
	if got := calculateBackoff(5, cfg); got != 5*time.Second {
		t.Errorf("Expected cap of 5s, got %v", got)
	}
}
