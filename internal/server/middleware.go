package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/law-makers/shelf/internal/metrics"
	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "shelf_session"

const sessionKey = "session"

// requestLogger logs every request through zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("session", c.GetString(sessionKey)).
			Msg("Request handled")
	}
}

// sessionCookie issues a session id on first visit and stores it on the context
func sessionCookie(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err == nil {
			_, err = uuid.Parse(id)
		}
		if err != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, 0, "/", "", secure, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

// throttled rejects collect requests beyond the per-session rate
func throttled(limiter ratelimit.RateLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limiter.Allow(c.GetString(sessionKey)) {
			c.Next()
			return
		}

		m.IncThrottled()
		respondThrottled(c)
		c.Abort()
	}
}
