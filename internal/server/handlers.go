package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/shelf/internal/collector"
	"github.com/law-makers/shelf/internal/report"
	"github.com/law-makers/shelf/internal/stats"
	urlutil "github.com/law-makers/shelf/internal/utils/url"
	"github.com/law-makers/shelf/pkg/models"
)

const maxBins = 100

// CollectRequest is the body of POST /api/v1/collect
type CollectRequest struct {
	URL   string `json:"url" binding:"required"`
	Limit int    `json:"limit"`
}

// DistributionResponse is the body of GET /api/v1/distribution
type DistributionResponse struct {
	Bins   []stats.Bin   `json:"bins"`
	Points []stats.Point `json:"points"`
}

// HealthResponse is the body of GET /api/v1/health
type HealthResponse struct {
	Status   string                 `json:"status"`
	Uptime   string                 `json:"uptime"`
	Version  string                 `json:"version"`
	Sessions map[string]interface{} `json:"sessions,omitempty"`
}

type statsReporter interface {
	Stats() map[string]interface{}
}

func (s *Server) sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// run validates the limit and runs the pipeline for the caller's session
func (s *Server) run(c *gin.Context, url string, limit int) (*models.CollectionResult, error) {
	if limit == 0 {
		limit = s.opts.Limits.Default
	}
	if err := s.opts.Limits.Check(limit); err != nil {
		return nil, &collector.CollectionError{Stage: collector.StageValidate, Err: err}
	}

	url = urlutil.Normalize(url)
	if err := urlutil.ValidateURL(url); err != nil {
		return nil, &collector.CollectionError{Stage: collector.StageValidate, Err: err}
	}

	return s.opts.Collector.Collect(c.Request.Context(), collector.Request{
		URL:       url,
		Limit:     limit,
		SessionID: s.sessionID(c),
		Attempts:  s.opts.Attempts,
	})
}

// collectJSON handles POST /api/v1/collect
func (s *Server) collectJSON(c *gin.Context) {
	var req CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, CodeInvalidInput, "invalid request: "+err.Error())
		return
	}

	result, err := s.run(c, req.URL, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collector.NewOutcome(result, nil))
}

// collectForm handles the dashboard form. Failures are flashed and the
// previously retained data stays on the page.
func (s *Server) collectForm(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.PostForm("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.flash(c, "invalid request: limit must be a whole number")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		limit = n
	}

	if _, err := s.run(c, c.PostForm("url"), limit); err != nil {
		s.flash(c, collector.NewOutcome(nil, err).Error.Message)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) flash(c *gin.Context, message string) {
	s.flashes.Add(s.sessionID(c), message)
}

func (s *Server) takeFlash(c *gin.Context) string {
	id := s.sessionID(c)
	message, ok := s.flashes.Get(id)
	if !ok {
		return ""
	}
	s.flashes.Remove(id)
	return message
}

// getResult handles GET /api/v1/result
func (s *Server) getResult(c *gin.Context) {
	result, ok := s.opts.Store.Get(s.sessionID(c))
	if !ok {
		respondDetail(c, http.StatusNotFound, CodeNoResult, "no data collected yet")
		return
	}
	c.JSON(http.StatusOK, collector.NewOutcome(result, nil))
}

// clearResult handles DELETE /api/v1/result
func (s *Server) clearResult(c *gin.Context) {
	s.opts.Store.Clear(s.sessionID(c))
	c.Status(http.StatusNoContent)
}

// exportResult handles GET /api/v1/result/export/:format
func (s *Server) exportResult(c *gin.Context) {
	result, ok := s.opts.Store.Get(s.sessionID(c))
	if !ok {
		respondDetail(c, http.StatusNotFound, CodeNoResult, "no data collected yet")
		return
	}

	var (
		contentType string
		write       func(w gin.ResponseWriter) error
	)
	switch c.Param("format") {
	case "json":
		contentType = "application/json; charset=utf-8"
		write = func(w gin.ResponseWriter) error { return report.WriteJSON(w, result) }
	case "csv":
		contentType = "text/csv; charset=utf-8"
		write = func(w gin.ResponseWriter) error { return report.WriteCSV(w, result) }
	case "md":
		contentType = "text/markdown; charset=utf-8"
		write = func(w gin.ResponseWriter) error { return report.WriteMarkdown(w, result) }
	default:
		respondDetail(c, http.StatusBadRequest, CodeUnknownFormat, "format must be json, csv or md")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename=products."+c.Param("format"))
	c.Status(http.StatusOK)
	if err := write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// distribution handles GET /api/v1/distribution
func (s *Server) distribution(c *gin.Context) {
	bins := stats.DefaultBins
	if raw := c.Query("bins"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxBins {
			respondDetail(c, http.StatusBadRequest, CodeInvalidInput, "bins must be between 1 and 100")
			return
		}
		bins = n
	}

	result, ok := s.opts.Store.Get(s.sessionID(c))
	if !ok {
		respondDetail(c, http.StatusNotFound, CodeNoResult, "no data collected yet")
		return
	}

	hist, err := stats.Histogram(result.Records, bins)
	if err != nil {
		respondDetail(c, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	c.JSON(http.StatusOK, DistributionResponse{Bins: hist, Points: stats.Scatter(result.Records)})
}

// health handles GET /api/v1/health
func (s *Server) health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Version: Version,
	}
	if sr, ok := s.opts.Store.(statsReporter); ok {
		resp.Sessions = sr.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
