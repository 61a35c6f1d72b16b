// internal/session/store.go
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long an untouched session keeps its result
const DefaultTTL = 30 * time.Minute

// Store retains the last successful collection per session.
//
// A stored result is replaced as a whole and never merged. Get on an id that
// was never written (or was cleared) reports false, which is a normal state.
type Store interface {
	// Put replaces the session's result.
	Put(id string, result *models.CollectionResult)

	// Get returns the session's result, or false when there is none.
	Get(id string) (*models.CollectionResult, bool)

	// Clear drops the session's result. Clearing an absent id is a no-op.
	Clear(id string)
}

// entry is never mutated after Put except for its idle timestamp
type entry struct {
	result   *models.CollectionResult
	lastSeen atomic.Int64 // unix nanoseconds
}

// MemoryStore keeps results in process memory. Each Put swaps in a new entry
// so readers see either the old or the new result, never a mix.
type MemoryStore struct {
	entries sync.Map // string -> *entry
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemoryStore creates a store that forgets sessions idle for longer than
// ttl. A ttl of zero disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := newMemoryStore(ttl, time.Now)
	if s.ttl > 0 {
		go s.janitor(sweepInterval(s.ttl))
	} else {
		close(s.done)
	}
	return s
}

func newMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if ttl < 0 {
		ttl = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MemoryStore{
		ttl:    ttl,
		now:    now,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}
	return interval
}

// Put implements Store
func (s *MemoryStore) Put(id string, result *models.CollectionResult) {
	if result == nil {
		return
	}
	e := &entry{result: result}
	e.lastSeen.Store(s.now().UnixNano())
	s.entries.Store(id, e)

	log.Debug().
		Str("session", id).
		Int("records", len(result.Records)).
		Msg("Session result stored")
}

// Get implements Store. A hit refreshes the idle timer.
func (s *MemoryStore) Get(id string) (*models.CollectionResult, bool) {
	v, ok := s.entries.Load(id)
	if !ok {
		s.misses.Add(1)
		return nil, false
	}

	e := v.(*entry)
	if s.expired(e, s.now()) {
		s.entries.CompareAndDelete(id, e)
		s.misses.Add(1)
		return nil, false
	}

	e.lastSeen.Store(s.now().UnixNano())
	s.hits.Add(1)
	return e.result, true
}

// Clear implements Store
func (s *MemoryStore) Clear(id string) {
	if _, loaded := s.entries.LoadAndDelete(id); loaded {
		log.Debug().Str("session", id).Msg("Session result cleared")
	}
}

// Len returns the number of sessions holding a result
func (s *MemoryStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats returns store statistics for health output
func (s *MemoryStore) Stats() map[string]interface{} {
	hits, misses := s.hits.Load(), s.misses.Load()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"sessions": s.Len(),
		"ttl":      s.ttl.String(),
		"hits":     hits,
		"misses":   misses,
		"hit_rate": hitRate,
	}
}

// Close stops the expiry goroutine. The stored results stay readable.
func (s *MemoryStore) Close() {
	s.cancel()
	<-s.done
}

func (s *MemoryStore) expired(e *entry, now time.Time) bool {
	if s.ttl == 0 {
		return false
	}
	return now.Sub(time.Unix(0, e.lastSeen.Load())) > s.ttl
}

// sweep removes idle sessions. CompareAndDelete leaves a session alone when a
// concurrent Put has already replaced the entry being inspected.
func (s *MemoryStore) sweep() int {
	now := s.now()
	removed := 0
	s.entries.Range(func(key, value any) bool {
		if s.expired(value.(*entry), now) && s.entries.CompareAndDelete(key, value) {
			removed++
		}
		return true
	})
	return removed
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				log.Debug().Int("expired", n).Msg("Expired idle sessions")
			}
		case <-s.ctx.Done():
			log.Debug().Msg("Session janitor stopped")
			return
		}
	}
}
