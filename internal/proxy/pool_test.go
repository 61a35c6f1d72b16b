package proxy

import (
	"testing"
	"time"
)

func TestPool_Rotation(t *testing.T) {
	pool := NewPool([]string{"p1", "p2", "p3"}, time.Minute)

	for _, want := range []string{"p1", "p2", "p3", "p1"} {
		if got := pool.Next(); got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}

func TestPool_SkipsFailedUntilCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pool := NewPool([]string{"p1", "p2", "p3"}, time.Minute)
	pool.now = func() time.Time { return now }

	pool.Next() // p1
	pool.MarkFailed("p2")

	if p := pool.Next(); p != "p3" {
		t.Errorf("Expected p3 (skipping p2), got %s", p)
	}
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.Next(); p != "p3" {
		t.Errorf("Expected p3 (skipping p2), got %s", p)
	}

	now = now.Add(2 * time.Minute)
	pool.Next() // p1
	if p := pool.Next(); p != "p2" {
		t.Errorf("Expected p2 after cooldown, got %s", p)
	}
}

func TestPool_MarkHealthy(t *testing.T) {
	pool := NewPool([]string{"p1", "p2"}, time.Hour)

	pool.MarkFailed("p1")
	if p := pool.Next(); p != "p2" {
		t.Errorf("Expected p2, got %s", p)
	}

	pool.MarkHealthy("p1")
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
}

func TestPool_AllFailedStillRotates(t *testing.T) {
	pool := NewPool([]string{"p1", "p2"}, time.Hour)
	pool.MarkFailed("p1")
	pool.MarkFailed("p2")

	if p := pool.Next(); p == "" {
		t.Error("Expected a proxy even when all are cooling down")
	}
}

func TestPool_NilIsDirect(t *testing.T) {
	var pool *Pool
	if p := pool.Next(); p != "" {
		t.Errorf("Expected empty proxy, got %s", p)
	}
	pool.MarkFailed("p1")
	if pool.Len() != 0 {
		t.Errorf("Expected 0, got %d", pool.Len())
	}

	if NewPool([]string{" ", ""}, 0) != nil {
		t.Error("Expected nil pool for blank list")
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" http://a:1, ,socks5://b:2 ")
	if len(got) != 2 {
		t.Fatalf("Expected 2 proxies, got %d", len(got))
	}
	if got[0] != "http://a:1" || got[1] != "socks5://b:2" {
		t.Errorf("Unexpected list %v", got)
	}
	if ParseList("") != nil {
		t.Error("Expected nil for empty list")
	}
}
