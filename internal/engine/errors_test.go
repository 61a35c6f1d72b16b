package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFetchError_MatchesErrFetch(t *testing.T) {
	err := NewFetchError("static", "http://example.com", context.DeadlineExceeded)

	if !errors.Is(err, ErrFetch) {
		t.Error("Expected FetchError to match ErrFetch")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Expected FetchError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "http://example.com") {
		t.Errorf("Expected URL in message, got '%s'", err.Error())
	}
}

func TestStatusError_AsThroughFetchError(t *testing.T) {
	err := NewFetchError("spa", "http://example.com", &StatusError{StatusCode: 503})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatal("Expected StatusError to be reachable with errors.As")
	}
	if statusErr.GetStatusCode() != 503 {
		t.Errorf("Expected status 503, got %d", statusErr.GetStatusCode())
	}
	if statusErr.Error() != "HTTP 503" {
		t.Errorf("Expected 'HTTP 503', got '%s'", statusErr.Error())
	}
}
