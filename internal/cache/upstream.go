package cache

import (
	"sync"
	"time"
)

// DefaultUpstreamTTL bounds how long chart/dosha lookups are reused.
// Chart math is deterministic for a given birth input, so this is
// generous.
const DefaultUpstreamTTL = 7 * 24 * time.Hour

type upstreamEntry struct {
	value     any
	negative  bool
	fetchedAt time.Time
}

// UpstreamCache is a TTL key-value cache for expensive, deterministic
// upstream lookups. Expiry is checked lazily on read; there is no
// sweeper for this sub-cache. A failed lookup can be cached as a
// negative entry so the same broken input does not hammer the upstream
// within the TTL.
type UpstreamCache struct {
	mu      sync.RWMutex
	entries map[string]upstreamEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewUpstreamCache(ttl time.Duration) *UpstreamCache {
	if ttl <= 0 {
		ttl = DefaultUpstreamTTL
	}
	return &UpstreamCache{
		entries: make(map[string]upstreamEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns (value, negative, present). A present negative entry
// means "we looked, it failed", distinct from "never looked"; its
// value, if any, is the failure reason recorded by PutNegative.
func (c *UpstreamCache) Get(key string) (any, bool, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, false
	}
	if c.now().Sub(e.fetchedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, false
	}
	return e.value, e.negative, true
}

func (c *UpstreamCache) Put(key string, value any) {
	c.mu.Lock()
	c.entries[key] = upstreamEntry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}

// PutNegative records a failed lookup for the key along with a reason
// the caller can use to reconstruct the failure on later hits.
func (c *UpstreamCache) PutNegative(key, reason string) {
	c.mu.Lock()
	c.entries[key] = upstreamEntry{value: reason, negative: true, fetchedAt: c.now()}
	c.mu.Unlock()
}

func (c *UpstreamCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
