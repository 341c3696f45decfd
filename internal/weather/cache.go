package weather

import (
	"sync"
	"time"
)

type cachedSnapshot struct {
	snapshot Snapshot
	savedAt  time.Time
}

// MemoryCache is a concurrency-safe in-memory Cache. Entries older than the
// TTL are not served and are evicted on the next Save.
type MemoryCache struct {
	mu sync.RWMutex

	// key: location key
	data map[string]cachedSnapshot

	ttl time.Duration
	now func() time.Time
}

// NewMemoryCache creates a cache. A ttl <= 0 disables caching.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cachedSnapshot),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Save stores the snapshot for a location and evicts expired entries.
func (c *MemoryCache) Save(loc Location, snapshot Snapshot) {
	if c.ttl <= 0 {
		return
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[loc.Key()] = cachedSnapshot{snapshot: snapshot, savedAt: now}

	cutoff := now.Add(-c.ttl)
	for key, entry := range c.data {
		if entry.savedAt.Before(cutoff) {
			delete(c.data, key)
		}
	}
}

// Latest returns the cached snapshot for a location if it has not expired.
func (c *MemoryCache) Latest(loc Location) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[loc.Key()]
	if !ok || c.now().Sub(entry.savedAt) > c.ttl {
		return Snapshot{}, false
	}
	return entry.snapshot, true
}
