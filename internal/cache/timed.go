// Package cache provides a bounded cache whose entries go stale after a TTL.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntries bounds a TimedCache when no size is given.
const DefaultMaxEntries = 256

// Entry is a cached value stamped with its fetch time.
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

// TimedCache maps keys to values that expire ttl after they were refreshed.
// Stale entries stay in place until overwritten or evicted, so IsStale can
// distinguish "never fetched" from "fetched long ago". It is safe for
// concurrent use.
type TimedCache[K comparable, V any] struct {
	lru *lru.Cache[K, Entry[V]]
	ttl time.Duration
	now func() time.Time
}

// Option configures a TimedCache.
type Option func(*options)

type options struct {
	size int
	now  func() time.Time
}

// WithMaxEntries bounds the number of keys. Least recently used keys are
// evicted first.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.size = n }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache with the given TTL.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *TimedCache[K, V] {
	o := options{size: DefaultMaxEntries, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.size <= 0 {
		o.size = DefaultMaxEntries
	}
	// lru.New only fails for a non-positive size.
	l, _ := lru.New[K, Entry[V]](o.size)
	return &TimedCache[K, V]{lru: l, ttl: ttl, now: o.now}
}

// Get returns the value for key. A missing or stale entry is a miss.
func (c *TimedCache[K, V]) Get(key K) (V, bool) {
	e, ok := c.lru.Get(key)
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Peek returns the entry for key even when stale.
func (c *TimedCache[K, V]) Peek(key K) (Entry[V], bool) {
	return c.lru.Peek(key)
}

// Refresh overwrites the entry for key and stamps it with the current time.
func (c *TimedCache[K, V]) Refresh(key K, value V) {
	c.lru.Add(key, Entry[V]{Value: value, FetchedAt: c.now()})
}

// IsStale reports whether key is missing or older than the TTL.
func (c *TimedCache[K, V]) IsStale(key K) bool {
	e, ok := c.lru.Peek(key)
	return !ok || c.expired(e)
}

// Len returns the number of entries, stale ones included.
func (c *TimedCache[K, V]) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *TimedCache[K, V]) Purge() {
	c.lru.Purge()
}

func (c *TimedCache[K, V]) expired(e Entry[V]) bool {
	return c.now().Sub(e.FetchedAt) >= c.ttl
}
