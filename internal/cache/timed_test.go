package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTimedCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string, []string](5*time.Minute, WithClock(clock.Now))

	if _, ok := c.Get("trending"); ok {
		t.Fatal("Get() on empty cache should miss")
	}
	if !c.IsStale("trending") {
		t.Error("IsStale() on missing key = false, want true")
	}

	c.Refresh("trending", []string{"a", "b"})
	clock.Advance(4*time.Minute + 59*time.Second)

	got, ok := c.Get("trending")
	if !ok || len(got) != 2 {
		t.Fatalf("Get() = %v, %v; want fresh hit", got, ok)
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("trending"); ok {
		t.Error("Get() at TTL should miss")
	}
	if !c.IsStale("trending") {
		t.Error("IsStale() at TTL = false, want true")
	}
	if e, ok := c.Peek("trending"); !ok || len(e.Value) != 2 {
		t.Error("Peek() should still return the stale entry")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestTimedCacheRefreshReplaces(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := New[string, []int](time.Hour, WithClock(clock.Now))

	c.Refresh("k", []int{1, 2, 3})
	clock.Advance(2 * time.Hour)
	c.Refresh("k", []int{9})

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get() after Refresh should hit")
	}
	if len(got) != 1 || got[0] != 9 {
		t.Errorf("Get() = %v, want [9]", got)
	}
	e, _ := c.Peek("k")
	if !e.FetchedAt.Equal(clock.Now()) {
		t.Errorf("FetchedAt = %v, want %v", e.FetchedAt, clock.Now())
	}
}

func TestTimedCacheBounded(t *testing.T) {
	c := New[int, int](time.Hour, WithMaxEntries(2))
	c.Refresh(1, 1)
	c.Refresh(2, 2)
	c.Refresh(3, 3)

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest key should have been evicted")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", c.Len())
	}
}
