package deviceicon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/bluele/gcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResource struct {
	name      string
	disposals atomic.Int32
}

func (r *countingResource) Dispose() {
	r.disposals.Add(1)
}

func newTestCache(t *testing.T, clock gcache.Clock) *SlidingCache[*countingResource] {
	t.Helper()

	c := NewSlidingCache(CacheOptions[*countingResource]{
		Expiration: 5 * time.Minute,
		Clock:      clock,
	})
	t.Cleanup(c.Close)
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, gcache.NewFakeClock())
	res := &countingResource{name: "a"}

	c.Insert("a", res)
	got, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Same(t, res, got)

	_, ok = c.Lookup("b")
	assert.False(t, ok)
	assert.Equal(t, int32(0), res.disposals.Load())
}

func TestCacheSlidingExpiration(t *testing.T) {
	t.Parallel()

	clock := gcache.NewFakeClock()
	c := newTestCache(t, clock)
	res := &countingResource{name: "a"}
	c.Insert("a", res)

	// Every access re-arms the window, so the entry outlives its first window.
	clock.Advance(4 * time.Minute)
	_, ok := c.Lookup("a")
	require.True(t, ok)
	clock.Advance(4 * time.Minute)
	_, ok = c.Lookup("a")
	require.True(t, ok)

	// Idle for longer than the window.
	clock.Advance(5*time.Minute + time.Second)
	_, ok = c.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, int32(1), res.disposals.Load())

	_, ok = c.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, int32(1), res.disposals.Load())
}

func TestCacheExpiresAtWindow(t *testing.T) {
	t.Parallel()

	clock := gcache.NewFakeClock()
	c := newTestCache(t, clock)
	res := &countingResource{name: "a"}
	c.Insert("a", res)

	clock.Advance(DefaultExpiration - time.Nanosecond)
	_, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, int32(0), res.disposals.Load())

	// Idle for exactly the window.
	clock.Advance(DefaultExpiration)
	_, ok = c.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, int32(1), res.disposals.Load())

	other := &countingResource{name: "b"}
	c.Insert("b", other)
	clock.Advance(DefaultExpiration)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, int32(1), other.disposals.Load())
}

func TestCacheSweep(t *testing.T) {
	t.Parallel()

	clock := gcache.NewFakeClock()
	c := newTestCache(t, clock)
	active := &countingResource{name: "active"}
	idle := &countingResource{name: "idle"}
	c.Insert("active", active)
	c.Insert("idle", idle)

	clock.Advance(3 * time.Minute)
	_, ok := c.Lookup("active")
	require.True(t, ok)
	clock.Advance(3 * time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int32(1), idle.disposals.Load())
	assert.Equal(t, int32(0), active.disposals.Load())

	assert.Equal(t, 0, c.Sweep())
	assert.Equal(t, int32(1), idle.disposals.Load())
}

func TestCacheOverwrite(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, gcache.NewFakeClock())
	first := &countingResource{name: "first"}
	second := &countingResource{name: "second"}

	c.Insert("k", first)
	c.Insert("k", second)
	assert.Equal(t, int32(1), first.disposals.Load())
	assert.Equal(t, int32(0), second.disposals.Load())

	got, ok := c.Lookup("k")
	require.True(t, ok)
	assert.Same(t, second, got)

	// Re-inserting the stored value must not dispose it.
	c.Insert("k", second)
	assert.Equal(t, int32(0), second.disposals.Load())
	assert.Equal(t, int32(1), first.disposals.Load())
}

func TestCacheOverwriteExpired(t *testing.T) {
	t.Parallel()

	clock := gcache.NewFakeClock()
	c := newTestCache(t, clock)
	first := &countingResource{name: "first"}
	second := &countingResource{name: "second"}

	c.Insert("k", first)
	clock.Advance(6 * time.Minute)
	c.Insert("k", second)

	assert.Equal(t, int32(1), first.disposals.Load())
	assert.Equal(t, int32(0), second.disposals.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCacheCapacity(t *testing.T) {
	t.Parallel()

	c := NewSlidingCache(CacheOptions[*countingResource]{
		Capacity: 2,
		Clock:    gcache.NewFakeClock(),
	})
	defer c.Close()

	a := &countingResource{name: "a"}
	b := &countingResource{name: "b"}
	d := &countingResource{name: "d"}
	c.Insert("a", a)
	c.Insert("b", b)
	c.Insert("d", d)

	assert.Equal(t, int32(1), a.disposals.Load())
	assert.Equal(t, int32(0), b.disposals.Load())
	assert.Equal(t, int32(0), d.disposals.Load())
	assert.Equal(t, 2, c.Len())
}

func TestCacheEvictedFunc(t *testing.T) {
	t.Parallel()

	var (
		lock    sync.Mutex
		evicted = make(map[string]*countingResource)
	)
	clock := gcache.NewFakeClock()
	c := NewSlidingCache(CacheOptions[*countingResource]{
		Clock: clock,
		EvictedFunc: func(key string, value *countingResource) {
			lock.Lock()
			defer lock.Unlock()
			evicted[key] = value
		},
	})
	defer c.Close()

	res := &countingResource{name: "a"}
	c.Insert("a", res)
	clock.Advance(DefaultExpiration + time.Second)
	c.Sweep()

	lock.Lock()
	defer lock.Unlock()
	assert.Same(t, res, evicted["a"])
	// Ownership went to the sink, the cache did not dispose.
	assert.Equal(t, int32(0), res.disposals.Load())
}

func TestCacheClose(t *testing.T) {
	t.Parallel()

	c := NewSlidingCache(CacheOptions[*countingResource]{Clock: gcache.NewFakeClock()})
	a := &countingResource{name: "a"}
	b := &countingResource{name: "b"}
	c.Insert("a", a)
	c.Insert("b", b)

	c.Close()
	c.Close()
	assert.Equal(t, int32(1), a.disposals.Load())
	assert.Equal(t, int32(1), b.disposals.Load())

	late := &countingResource{name: "late"}
	c.Insert("late", late)
	assert.Equal(t, int32(1), late.disposals.Load())
	_, ok := c.Lookup("late")
	assert.False(t, ok)
}

func TestCacheNonDisposableValues(t *testing.T) {
	t.Parallel()

	clock := gcache.NewFakeClock()
	c := NewSlidingCache(CacheOptions[string]{Clock: clock})
	defer c.Close()

	c.Insert("k", "first")
	c.Insert("k", "second")
	clock.Advance(DefaultExpiration + time.Second)
	assert.Equal(t, 1, c.Sweep())
}

func TestCacheMetrics(t *testing.T) {
	t.Parallel()

	set := vm.NewSet()
	c := NewSlidingCache(CacheOptions[*countingResource]{
		Clock:   gcache.NewFakeClock(),
		Metrics: set,
	})
	defer c.Close()

	c.Insert("a", &countingResource{})
	c.Lookup("a")
	c.Lookup("a")
	c.Lookup("b")
	c.Insert("a", &countingResource{})

	assert.Equal(t, uint64(2), set.GetOrCreateCounter(`deviceicon_cache_lookups_total{result="hit"}`).Get())
	assert.Equal(t, uint64(1), set.GetOrCreateCounter(`deviceicon_cache_lookups_total{result="miss"}`).Get())
	assert.Equal(t, uint64(1), set.GetOrCreateCounter(`deviceicon_cache_evictions_total`).Get())
}

func TestCacheBackgroundSweep(t *testing.T) {
	t.Parallel()

	c := NewSlidingCache(CacheOptions[*countingResource]{
		Expiration:    10 * time.Millisecond,
		SweepInterval: 5 * time.Millisecond,
	})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	c.Start(ctx)

	res := &countingResource{name: "a"}
	c.Insert("a", res)

	require.Eventually(t, func() bool {
		return res.disposals.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := NewSlidingCache(CacheOptions[*countingResource]{
		Capacity: 8,
		Clock:    gcache.NewFakeClock(),
	})

	var (
		lock      sync.Mutex
		resources []*countingResource
		wg        sync.WaitGroup
	)
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", (worker+i)%12)
				if _, ok := c.Lookup(key); ok {
					continue
				}
				res := &countingResource{name: key}
				lock.Lock()
				resources = append(resources, res)
				lock.Unlock()
				c.Insert(key, res)
			}
		}(worker)
	}
	wg.Wait()
	c.Close()

	// Every value left the cache exactly once.
	for _, res := range resources {
		assert.Equal(t, int32(1), res.disposals.Load(), res.name)
	}
}
