package scorecard

import (
	"sync"
	"time"
)

// CacheKey identifies one version of one input file.
type CacheKey struct {
	Path   string
	Digest string
}

type cacheEntry struct {
	bundle    *Bundle
	cachedAt  time.Time
	expiresAt time.Time
	hits      int64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRatio   float64 `json:"hit_ratio"`
	TTLSeconds float64 `json:"ttl_seconds"`
}

// Cache holds parsed bundles keyed by path and content digest, so an edited
// file is never served from a stale entry. It is owned by its caller; there
// is no package-level instance. Expired entries are dropped on access.
type Cache struct {
	mu         sync.Mutex
	entries    map[CacheKey]*cacheEntry
	ttl        time.Duration
	maxEntries int
	hits       int64
	misses     int64
	now        func() time.Time
}

// NewCache creates a cache. ttl <= 0 disables expiry; maxEntries <= 0
// disables storage entirely.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[CacheKey]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the bundle cached for key.
func (c *Cache) Get(key CacheKey) (*Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if ok && c.expired(entry) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		return nil, false
	}

	entry.hits++
	c.hits++
	return entry.bundle, true
}

// Set stores bundle under key. Older versions of the same path are replaced.
func (c *Cache) Set(key CacheKey, bundle *Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries <= 0 || bundle == nil {
		return
	}

	for k := range c.entries {
		if k.Path == key.Path && k != key {
			delete(c.entries, k)
		}
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	now := c.now()
	entry := &cacheEntry{bundle: bundle, cachedAt: now}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
	}
	c.entries[key] = entry
}

// Invalidate drops every entry for path and returns how many were removed.
func (c *Cache) Invalidate(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if k.Path == path {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear empties the cache. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey]*cacheEntry)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}
	return CacheStats{
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
		HitRatio:   ratio,
		TTLSeconds: c.ttl.Seconds(),
	}
}

func (c *Cache) expired(e *cacheEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

func (c *Cache) evictOldest() {
	var oldestKey CacheKey
	var oldest *cacheEntry
	for key, entry := range c.entries {
		if oldest == nil || entry.cachedAt.Before(oldest.cachedAt) {
			oldestKey, oldest = key, entry
		}
	}
	if oldest != nil {
		delete(c.entries, oldestKey)
	}
}
