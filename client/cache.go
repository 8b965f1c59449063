package client

import (
	"context"
	"sync"
	"time"
)

// TokenCache stores the formatted access token with a time-to-live.
// Implementations own eviction: a value must not be returned once its ttl has
// elapsed. A ttl <= 0 stores nothing.
type TokenCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryTokenCache is an in-process TokenCache.
type MemoryTokenCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryTokenCache creates an empty memory cache.
// A nil clock defaults to time.Now.
func NewMemoryTokenCache(now func() time.Time) *MemoryTokenCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryTokenCache{
		entries: make(map[string]cacheEntry),
		now:     now,
	}
}

var (
	sharedCacheOnce sync.Once
	sharedCache     *MemoryTokenCache
)

// SharedTokenCache returns the process-wide memory cache used when no cache is
// configured explicitly.
func SharedTokenCache() *MemoryTokenCache {
	sharedCacheOnce.Do(func() {
		sharedCache = NewMemoryTokenCache(nil)
	})
	return sharedCache
}

// Get returns the value for key if present and not expired.
func (c *MemoryTokenCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key for ttl.
func (c *MemoryTokenCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return nil
	}
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}
