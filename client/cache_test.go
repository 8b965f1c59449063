package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenCache_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryTokenCache(clock.Now)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, TokenCacheKey, "Bearer abc", time.Minute))

	got, ok, err := cache.Get(ctx, TokenCacheKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bearer abc", got)

	clock.Advance(59 * time.Second)
	_, ok, _ = cache.Get(ctx, TokenCacheKey)
	assert.True(t, ok, "value must survive until the ttl elapses")

	clock.Advance(time.Second)
	_, ok, err = cache.Get(ctx, TokenCacheKey)
	require.NoError(t, err)
	assert.False(t, ok, "value must be evicted once the ttl elapses")
}

func TestMemoryTokenCache_NonPositiveTTLStoresNothing(t *testing.T) {
	cache := NewMemoryTokenCache(nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Hour))
	require.NoError(t, cache.Set(ctx, "k", "v2", 0))

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSharedTokenCache_IsSingleton(t *testing.T) {
	assert.Same(t, SharedTokenCache(), SharedTokenCache())
}
