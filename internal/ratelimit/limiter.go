// internal/ratelimit/limiter.go
package ratelimit

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for keyed rate limiting.
//
// Each key (a session id, a client address) gets its own token bucket.
type RateLimiter interface {
	// Allow reports whether a request for key can proceed immediately
	// and consumes a token if so.
	Allow(key string) bool
}

// KeyedLimiter keeps one token bucket per key. The bucket table is bounded;
// the least recently used bucket is dropped when it is full, which hands a
// returning key a fresh burst.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewKeyedLimiter creates a limiter allowing rps requests per second per key
// with the given burst, tracking at most size keys. A nil limiter (rps <= 0)
// allows everything.
func NewKeyedLimiter(rps float64, burst, size int) (*KeyedLimiter, error) {
	if rps <= 0 {
		return nil, nil
	}
	if burst <= 0 {
		return nil, fmt.Errorf("burst must be positive, got %d", burst)
	}

	buckets, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter table: %w", err)
	}

	return &KeyedLimiter{
		buckets: buckets,
		limit:   rate.Limit(rps),
		burst:   burst,
	}, nil
}

// Allow checks if a request can proceed immediately without blocking
func (kl *KeyedLimiter) Allow(key string) bool {
	if kl == nil {
		return true
	}
	return kl.bucket(key).Allow()
}

// Len returns the number of tracked keys
func (kl *KeyedLimiter) Len() int {
	if kl == nil {
		return 0
	}
	return kl.buckets.Len()
}

// bucket returns or creates the token bucket for key
func (kl *KeyedLimiter) bucket(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if limiter, ok := kl.buckets.Get(key); ok {
		return limiter
	}

	limiter := rate.NewLimiter(kl.limit, kl.burst)
	kl.buckets.Add(key, limiter)
	return limiter
}
