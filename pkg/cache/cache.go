// Package cache provides a small in-process TTL cache for memoizing expensive
// classification and generation results.
package cache

import (
	"strings"
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is a TTL-bounded key-value map. Entries are immutable values; a stale
// entry is dropped on read. Instances are safe for concurrent use and meant
// to be constructed explicitly and injected, never shared as a singleton.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock builds a cache with an injected clock, used by tests to drive
// entry expiry deterministically.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     now,
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Key derives a deterministic cache key from an operation name and the raw
// input text: lowercased, trimmed, whitespace collapsed to underscores.
func Key(op, input string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(input)), "_")
	return op + "_" + normalized
}

// UserDataKey is the key under which a user's fetched medication summary is
// memoized. Create and edit executors delete it synchronously after every
// successful mutation.
func UserDataKey(userID string) string {
	return "user_data_" + userID
}
