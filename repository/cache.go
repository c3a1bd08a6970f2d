package repository

import (
	"sync"
	"time"

	"github.com/tnqbao/gau-box-service/entity"
)

// DefaultCacheTTL bounds how long a box snapshot may be served without
// re-reading the record store.
const DefaultCacheTTL = time.Minute

type cacheEntry struct {
	box      *entity.Box
	storedAt time.Time
}

// BoxCache is a mutex-guarded TTL cache for box snapshots. Entries expire
// lazily on the next read; there is no background sweep. The clock is
// injectable so expiry is testable.
type BoxCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func NewBoxCache(ttl time.Duration, now func() time.Time) *BoxCache {
	if now == nil {
		now = time.Now
	}
	return &BoxCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *BoxCache) Get(key string) (*entity.Box, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.box.Clone(), true
}

func (c *BoxCache) Set(key string, box *entity.Box) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{box: box.Clone(), storedAt: c.now()}
}

func (c *BoxCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}
