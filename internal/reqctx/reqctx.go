package reqctx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type key int

const requestKey key = 0

// RequestContext identifies one collection run across log lines
type RequestContext struct {
	RequestID string
	SessionID string
	StartTime time.Time
}

// WithRequestContext attaches a fresh run id. An existing context is kept so
// ids assigned by the HTTP middleware survive into the collector.
func WithRequestContext(ctx context.Context, sessionID string) context.Context {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		if rc.SessionID == sessionID {
			return ctx
		}
		return context.WithValue(ctx, requestKey, &RequestContext{
			RequestID: rc.RequestID,
			SessionID: sessionID,
			StartTime: rc.StartTime,
		})
	}
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: uuid.NewString(),
		SessionID: sessionID,
		StartTime: time.Now(),
	})
}

// GetRequestContext returns the attached context or an "unknown" placeholder
func GetRequestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

// Elapsed returns the time since the run started
func (rc *RequestContext) Elapsed() time.Duration {
	return time.Since(rc.StartTime)
}
