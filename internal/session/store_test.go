package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/law-makers/shelf/pkg/models"
)

func result(names ...string) *models.CollectionResult {
	r := &models.CollectionResult{}
	for _, n := range names {
		r.Records = append(r.Records, models.ProductRecord{Name: n, Price: 1})
	}
	return r
}

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	want := result("Widget")
	s.Put("abc", want)

	got, ok := s.Get("abc")
	if !ok {
		t.Fatal("Expected result to be present")
	}
	if got != want {
		t.Error("Expected the exact stored result")
	}
}

func TestMemoryStore_GetAbsent(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	if r, ok := s.Get("nobody"); ok || r != nil {
		t.Errorf("Expected absent, got %v %v", r, ok)
	}
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	a, b := result("A"), result("B")
	s.Put("sess", a)
	s.Put("sess", b)

	got, _ := s.Get("sess")
	if got != b {
		t.Errorf("Expected second result, got %v", got.Records)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	s.Put("sess", result("A"))
	s.Clear("sess")
	s.Clear("never-existed")

	if _, ok := s.Get("sess"); ok {
		t.Error("Expected session to be cleared")
	}
	if s.Len() != 0 {
		t.Errorf("Expected 0 sessions, got %d", s.Len())
	}
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	s.Put("one", result("A"))
	s.Put("two", result("B"))
	s.Clear("one")

	got, ok := s.Get("two")
	if !ok || got.Records[0].Name != "B" {
		t.Error("Expected other session to be untouched")
	}
}

func TestMemoryStore_ConcurrentPutsLeaveOneResult(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	results := make([]*models.CollectionResult, 50)
	for i := range results {
		results[i] = result(fmt.Sprintf("r%d", i))
	}

	var wg sync.WaitGroup
	for _, r := range results {
		wg.Add(2)
		go func(r *models.CollectionResult) {
			defer wg.Done()
			s.Put("shared", r)
		}(r)
		go func() {
			defer wg.Done()
			if got, ok := s.Get("shared"); ok && len(got.Records) != 1 {
				t.Errorf("Observed partial result with %d records", len(got.Records))
			}
		}()
	}
	wg.Wait()

	got, ok := s.Get("shared")
	if !ok {
		t.Fatal("Expected a result")
	}
	found := false
	for _, r := range results {
		if r == got {
			found = true
		}
	}
	if !found {
		t.Error("Expected the final result to be one of the written results")
	}
}

func TestMemoryStore_IdleExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newMemoryStore(10*time.Minute, func() time.Time { return now })

	s.Put("idle", result("A"))
	s.Put("active", result("B"))

	now = now.Add(8 * time.Minute)
	s.Get("active")

	now = now.Add(5 * time.Minute)
	if removed := s.sweep(); removed != 1 {
		t.Errorf("Expected 1 expired session, got %d", removed)
	}
	if _, ok := s.Get("idle"); ok {
		t.Error("Expected idle session to expire")
	}
	if _, ok := s.Get("active"); !ok {
		t.Error("Expected recently read session to survive")
	}
}

func TestMemoryStore_GetExpiredWithoutSweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newMemoryStore(time.Minute, func() time.Time { return now })

	s.Put("sess", result("A"))
	now = now.Add(2 * time.Minute)

	if _, ok := s.Get("sess"); ok {
		t.Error("Expected expired session to read as absent")
	}
}

func TestMemoryStore_SweepKeepsReplacedEntry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newMemoryStore(time.Minute, func() time.Time { return now })

	s.Put("sess", result("old"))
	v, _ := s.entries.Load("sess")
	stale := v.(*entry)

	now = now.Add(2 * time.Minute)
	fresh := result("new")
	s.Put("sess", fresh)

	if s.entries.CompareAndDelete("sess", stale) {
		t.Fatal("Expected compare-and-delete of a replaced entry to fail")
	}
	if s.sweep() != 0 {
		t.Error("Expected fresh entry to survive the sweep")
	}
	if got, _ := s.Get("sess"); got != fresh {
		t.Error("Expected fresh result")
	}
}

func TestMemoryStore_Stats(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	s.Put("a", result("A"))
	s.Get("a")
	s.Get("b")

	stats := s.Stats()
	if stats["sessions"] != 1 {
		t.Errorf("Expected 1 session, got %v", stats["sessions"])
	}
	if stats["hits"] != uint64(1) || stats["misses"] != uint64(1) {
		t.Errorf("Unexpected hits/misses %v/%v", stats["hits"], stats["misses"])
	}
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	s.Close()
	s.Close()
}

var _ Store = (*MemoryStore)(nil)
