package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	_, err := c.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsCacheMiss(err))
	assert.True(t, IsCacheMiss(fmt.Errorf("wrapped: %w", err)))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "default", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "forever", []byte("3"), -1))

	now = now.Add(2 * time.Second)
	_, err := c.Get(ctx, "short")
	assert.True(t, IsCacheMiss(err))
	assert.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Hour)
	_, err = c.Get(ctx, "default")
	assert.True(t, IsCacheMiss(err))

	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)

	c.removeExpired()
	c.mu.RLock()
	assert.Len(t, c.entries, 1)
	c.mu.RUnlock()
}

func TestMemoryCache_StoresCopies(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'z'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ContextCancelled(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), context.Canceled)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = c.Set(ctx, key, []byte{byte(i)}, time.Minute)
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
}

func TestNew_Backends(t *testing.T) {
	c, err := New(Options{Backend: BackendMemory, Config: DefaultConfig()})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
	c.Close()

	c, err = New(Options{Backend: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = New(Options{Backend: "memcached"})
	assert.Error(t, err)
}
