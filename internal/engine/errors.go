// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// ErrFetch is matched by every error a Fetcher returns. Callers only need to
// know that the page could not be loaded; the wrapped cause is for logs.
var ErrFetch = errors.New("fetch failed")

// Causes wrapped inside a FetchError
var (
	ErrBrowserNotFound = errors.New("chrome browser not found")
	ErrBrowserLaunch   = errors.New("browser failed to start")
	ErrTimeout         = errors.New("request timeout")
	ErrPageClosed      = errors.New("page already closed")
)

// FetchError wraps a fetch failure with the engine and URL involved
type FetchError struct {
	Engine string
	URL    string
	Err    error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %s: %v", e.Engine, ErrFetch, e.Err)
	}
	return fmt.Sprintf("%s: %s for %s: %v", e.Engine, ErrFetch, e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports ErrFetch as a match so callers never need the concrete type
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NewFetchError creates a new FetchError
func NewFetchError(engine, url string, err error) *FetchError {
	return &FetchError{Engine: engine, URL: url, Err: err}
}

// StatusError is returned when the target answers with an HTTP error status
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("HTTP %s", e.Status)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// GetStatusCode exposes the status code to retry policies
func (e *StatusError) GetStatusCode() int {
	return e.StatusCode
}
