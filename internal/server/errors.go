package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/shelf/internal/collector"
	"github.com/law-makers/shelf/pkg/models"
)

// Error codes the API adds on top of the collection stages
const (
	CodeNoResult      = "NO_RESULT"
	CodeInvalidInput  = "INVALID_REQUEST"
	CodeRateLimited   = "RATE_LIMITED"
	CodeUnknownFormat = "UNKNOWN_FORMAT"
)

// statusFor maps a collection stage to an HTTP status
func statusFor(stage collector.Stage) int {
	switch stage {
	case collector.StageValidate:
		return http.StatusBadRequest
	case collector.StageFetch:
		return http.StatusBadGateway
	case collector.StageExtract, collector.StageEmpty:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a failed Outcome for err
func respondError(c *gin.Context, err error) {
	outcome := collector.NewOutcome(nil, err)
	c.JSON(statusFor(collector.StageOf(err)), outcome)
}

// respondDetail writes a failed Outcome with an explicit code and message
func respondDetail(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.Outcome{
		OK:    false,
		Error: &models.ErrorDetail{Code: code, Message: message},
	})
}

func respondThrottled(c *gin.Context) {
	respondDetail(c, http.StatusTooManyRequests, CodeRateLimited, "too many collections, please wait a moment")
}
