package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedSummary struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

func TestInMemoryResultCache_SetAndGet(t *testing.T) {
	cache := NewInMemoryResultCache()
	defer cache.Close()
	ctx := context.Background()

	in := cachedSummary{Name: "daily_sales", Total: 42}
	require.NoError(t, cache.Set(ctx, "daily_sales", in, time.Minute))

	var out cachedSummary
	require.NoError(t, cache.Get(ctx, "daily_sales", &out))
	assert.Equal(t, in, out)
}

func TestInMemoryResultCache_MissOnUnknownKey(t *testing.T) {
	cache := NewInMemoryResultCache()
	defer cache.Close()

	var out cachedSummary
	err := cache.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInMemoryResultCache_ExpiredEntryIsAMiss(t *testing.T) {
	cache := NewInMemoryResultCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedSummary{Total: 1}, -time.Second))

	var out cachedSummary
	err := cache.Get(ctx, "k", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInMemoryResultCache_Invalidate(t *testing.T) {
	cache := NewInMemoryResultCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedSummary{Total: 1}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "k"))

	var out cachedSummary
	err := cache.Get(ctx, "k", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Zero(t, cache.Size())
}

func TestInMemoryResultCache_CachesSlices(t *testing.T) {
	cache := NewInMemoryResultCache()
	defer cache.Close()
	ctx := context.Background()

	in := []cachedSummary{{Name: "a", Total: 1}, {Name: "b", Total: 2}}
	require.NoError(t, cache.Set(ctx, "rows", in, time.Minute))

	var out []cachedSummary
	require.NoError(t, cache.Get(ctx, "rows", &out))
	assert.Equal(t, in, out)
}

func TestInMemoryResultCache_CloseIsIdempotent(t *testing.T) {
	cache := NewInMemoryResultCache()
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}
