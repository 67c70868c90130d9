package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/catalogsearch/internal/domain/providers"
)

func TestMemoryAdapter_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryAdapter()

	require.NoError(t, cache.Set(ctx, "provider:p1", []byte(`{"id":"p1"}`), 60))

	value, err := cache.Get(ctx, "provider:p1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"p1"}`, string(value))

	require.NoError(t, cache.Delete(ctx, "provider:p1"))
	_, err = cache.Get(ctx, "provider:p1")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestMemoryAdapter_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryAdapter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 10))

	now = now.Add(9 * time.Second)
	_, err := cache.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestMemoryAdapter_Multi(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryAdapter()

	require.NoError(t, cache.SetMulti(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, 0))

	values, err := cache.GetMulti(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, values)
}
