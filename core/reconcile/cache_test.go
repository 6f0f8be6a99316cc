package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFetch(calls *int32, delay time.Duration) FetchFunc {
	return func(ctx context.Context, location string) ([]byte, error) {
		atomic.AddInt32(calls, 1)
		time.Sleep(delay)
		return []byte(location), nil
	}
}

func TestCache_HitWithinTTL(t *testing.T) {
	var calls int32
	cache := NewCache(countingFetch(&calls, 0), time.Minute)

	for i := 0; i < 3; i++ {
		data, err := cache.Fetch(context.Background(), "a.yaml")
		require.NoError(t, err)
		assert.Equal(t, "a.yaml", string(data))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_ZeroTTLAlwaysFetches(t *testing.T) {
	var calls int32
	cache := NewCache(countingFetch(&calls, 0), 0)

	_, _ = cache.Fetch(context.Background(), "a.yaml")
	_, _ = cache.Fetch(context.Background(), "a.yaml")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_SingleflightCollapsesConcurrentMisses(t *testing.T) {
	var calls int32
	cache := NewCache(countingFetch(&calls, 50*time.Millisecond), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Fetch(context.Background(), "a.yaml")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_FreshAndInvalidate(t *testing.T) {
	var calls int32
	cache := NewCache(countingFetch(&calls, 0), time.Minute)
	ctx := context.Background()

	_, _ = cache.Fetch(ctx, "a.yaml")
	_, _ = cache.Fresh(ctx, "a.yaml")
	_, _ = cache.Fetch(ctx, "a.yaml")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	cache.Invalidate("a.yaml")
	_, _ = cache.Fetch(ctx, "a.yaml")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	fail := true
	cache := NewCache(func(ctx context.Context, location string) ([]byte, error) {
		if fail {
			return nil, errors.New("unavailable")
		}
		return []byte("ok"), nil
	}, time.Minute)

	_, err := cache.Fetch(context.Background(), "a.yaml")
	require.Error(t, err)

	fail = false
	data, err := cache.Fetch(context.Background(), "a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}
