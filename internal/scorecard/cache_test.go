package scorecard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	cache := NewCache(0, 4)
	key := CacheKey{Path: "grau-1.csv", Digest: "d1"}
	bundle := &Bundle{FinalScore: 35}

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Set(key, bundle)
	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Same(t, bundle, got)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 1e-9)
}

func TestCache_NewDigestReplacesOldVersion(t *testing.T) {
	cache := NewCache(0, 4)
	cache.Set(CacheKey{Path: "a.csv", Digest: "v1"}, &Bundle{FinalScore: 1})
	cache.Set(CacheKey{Path: "a.csv", Digest: "v2"}, &Bundle{FinalScore: 2})

	_, ok := cache.Get(CacheKey{Path: "a.csv", Digest: "v1"})
	assert.False(t, ok, "edited file must not be served from the old entry")

	got, ok := cache.Get(CacheKey{Path: "a.csv", Digest: "v2"})
	require.True(t, ok)
	assert.Equal(t, 2, got.FinalScore)
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestCache_Invalidate(t *testing.T) {
	cache := NewCache(0, 4)
	cache.Set(CacheKey{Path: "a.csv", Digest: "v1"}, &Bundle{})
	cache.Set(CacheKey{Path: "b.csv", Digest: "v1"}, &Bundle{})

	assert.Equal(t, 1, cache.Invalidate("a.csv"))
	assert.Equal(t, 0, cache.Invalidate("a.csv"))
	assert.Equal(t, 1, cache.Stats().Entries)

	cache.Clear()
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestCache_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(time.Minute, 4)
	cache.now = func() time.Time { return now }

	key := CacheKey{Path: "a.csv", Digest: "v1"}
	cache.Set(key, &Bundle{})

	now = now.Add(30 * time.Second)
	_, ok := cache.Get(key)
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok = cache.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestCache_EvictsOldest(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewCache(0, 2)
	cache.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	cache.Set(CacheKey{Path: "a.csv"}, &Bundle{})
	cache.Set(CacheKey{Path: "b.csv"}, &Bundle{})
	cache.Set(CacheKey{Path: "c.csv"}, &Bundle{})

	_, ok := cache.Get(CacheKey{Path: "a.csv"})
	assert.False(t, ok)
	_, ok = cache.Get(CacheKey{Path: "c.csv"})
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Stats().Entries)
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(0, 0)
	cache.Set(CacheKey{Path: "a.csv"}, &Bundle{})

	_, ok := cache.Get(CacheKey{Path: "a.csv"})
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Stats().Entries)
}
