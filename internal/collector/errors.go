package collector

import (
	"errors"
	"fmt"

	"github.com/law-makers/shelf/pkg/models"
)

// Stage names the pipeline step a run failed in
type Stage string

const (
	StageValidate  Stage = "validate"
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageEmpty     Stage = "empty"
	StageSummarize Stage = "summarize"
)

// CollectionError is returned by Collect for every failed run. The session
// store is never touched when one is returned.
type CollectionError struct {
	Stage Stage
	Err   error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collection failed at %s: %v", e.Stage, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// Is matches another CollectionError with the same stage, so callers can
// write errors.Is(err, &CollectionError{Stage: StageFetch})
func (e *CollectionError) Is(target error) bool {
	t, ok := target.(*CollectionError)
	return ok && t.Stage == e.Stage
}

// UserMessage returns the text shown to the person who started the run
func (e *CollectionError) UserMessage() string {
	switch e.Stage {
	case StageValidate:
		return fmt.Sprintf("invalid request: %v", e.Err)
	case StageFetch:
		return "could not load the page"
	case StageExtract:
		return "could not read product listings"
	case StageEmpty:
		return "no products found"
	default:
		return "could not summarize the products"
	}
}

// Code is a stable machine readable identifier for the stage
func (e *CollectionError) Code() string {
	switch e.Stage {
	case StageValidate:
		return "INVALID_REQUEST"
	case StageFetch:
		return "FETCH_FAILED"
	case StageExtract:
		return "EXTRACTION_FAILED"
	case StageEmpty:
		return "NO_PRODUCTS"
	default:
		return "SUMMARY_FAILED"
	}
}

// StageOf returns the failing stage of err, or "" when err did not come
// from Collect
func StageOf(err error) Stage {
	var ce *CollectionError
	if errors.As(err, &ce) {
		return ce.Stage
	}
	return ""
}

// NewOutcome converts the return values of Collect into the value handed to
// the presentation layer
func NewOutcome(result *models.CollectionResult, err error) models.Outcome {
	if err == nil && result != nil {
		return models.Outcome{OK: true, Result: result}
	}

	var ce *CollectionError
	if errors.As(err, &ce) {
		return models.Outcome{Error: &models.ErrorDetail{
			Code:    ce.Code(),
			Stage:   string(ce.Stage),
			Message: ce.UserMessage(),
		}}
	}

	return models.Outcome{Error: &models.ErrorDetail{
		Code:    "INTERNAL",
		Message: "collection failed",
	}}
}
