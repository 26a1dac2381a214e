// Package cache provides a small TTL cache shared by the role and directory
// resolvers.  The clock is injected so tests can expire entries without
// sleeping.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time.  Production code passes time.Now.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL cache.  It is read-mostly, process-wide
// state; populate-on-miss is the caller's job (Get then Put).
type Cache[V any] struct {
	mu      sync.Mutex
	now     Clock
	entries map[string]entry[V]
}

func New[V any](now Clock) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{now: now, entries: make(map[string]entry[V])}
}

// Get returns the live value for key, if any.  Expired entries are treated
// as absent (and removed).
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key for ttl.  A non-positive ttl stores nothing.
func (c *Cache[V]) Put(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Invalidate drops all entries.
func (c *Cache[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Sweep removes expired entries and returns how many were dropped.  Called
// by the background janitor; correctness never depends on it since Get
// ignores expired entries.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}
