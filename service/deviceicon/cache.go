package deviceicon

import (
	"context"
	"sync"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/bluele/gcache"
	"github.com/tevino/abool"
)

// ResourceCache caches resources by key.
type ResourceCache[V any] interface {
	// Lookup returns the cached value and re-arms its expiration.
	Lookup(key string) (value V, ok bool)
	// Insert stores the value. A different value previously stored at key
	// is evicted.
	Insert(key string, value V)
}

// CacheOptions holds options for a SlidingCache.
type CacheOptions[V any] struct {
	// Expiration is the sliding expiration window.
	Expiration time.Duration

	// SweepInterval is the interval of the background sweeper started by
	// Start.
	SweepInterval time.Duration

	// Capacity is the maximum amount of entries.
	Capacity int

	// Clock is the time source for expiration.
	Clock gcache.Clock

	// EvictedFunc receives every evicted value together with its ownership.
	// If it is not set, evicted values that implement Disposer are disposed.
	EvictedFunc func(key string, value V)

	// Metrics is the set the cache counters are registered in.
	Metrics *vm.Set
}

// SlidingCache is a ResourceCache with per-entry sliding expiration.
// Evicted values are handed to the eviction sink exactly once, whether they
// leave the cache through expiration, capacity pressure, replacement or
// Close.
type SlidingCache[V comparable] struct {
	// lock serializes all access to cache, so that a sweep never evicts an
	// entry while a lookup is handing it out.
	lock  sync.Mutex
	cache gcache.Cache

	sweepInterval time.Duration
	evictedFunc   func(key string, value V)

	hits      *vm.Counter
	misses    *vm.Counter
	evictions *vm.Counter

	started *abool.AtomicBool
	closed  *abool.AtomicBool
	stop    chan struct{}
}

// NewSlidingCache returns a new cache. Zero options use the package defaults.
func NewSlidingCache[V comparable](opts CacheOptions[V]) *SlidingCache[V] {
	if opts.Expiration <= 0 {
		opts.Expiration = DefaultExpiration
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Clock == nil {
		opts.Clock = gcache.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = vm.NewSet()
	}

	c := &SlidingCache[V]{
		sweepInterval: opts.SweepInterval,
		evictedFunc:   opts.EvictedFunc,
		hits:          opts.Metrics.GetOrCreateCounter(`deviceicon_cache_lookups_total{result="hit"}`),
		misses:        opts.Metrics.GetOrCreateCounter(`deviceicon_cache_lookups_total{result="miss"}`),
		evictions:     opts.Metrics.GetOrCreateCounter(`deviceicon_cache_evictions_total`),
		started:       abool.New(),
		closed:        abool.New(),
		stop:          make(chan struct{}),
	}
	// gcache only expires entries strictly after their deadline, while an
	// entry idle for the full window counts as expired here.
	c.cache = gcache.New(opts.Capacity).
		LRU().
		Clock(opts.Clock).
		Expiration(opts.Expiration - time.Nanosecond).
		EvictedFunc(c.handleEvicted).
		PurgeVisitorFunc(c.handleEvicted).
		Build()

	return c
}

// handleEvicted is called by gcache with its internal lock held, once for
// every entry that leaves the cache.
func (c *SlidingCache[V]) handleEvicted(key, value interface{}) {
	c.evictions.Inc()

	v, ok := value.(V)
	if !ok {
		return
	}
	c.release(key.(string), v) //nolint:forcetypeassert
}

func (c *SlidingCache[V]) release(key string, value V) {
	if c.evictedFunc != nil {
		c.evictedFunc(key, value)
		return
	}
	if d, ok := any(value).(Disposer); ok {
		d.Dispose()
	}
}

// Lookup returns the value stored at key, if it is present and was accessed
// less than the expiration window ago. A hit re-arms the expiration window
// of the entry. An expired entry is evicted and reported as a miss.
func (c *SlidingCache[V]) Lookup(key string) (value V, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	v, err := c.cache.GetIFPresent(key)
	if err != nil {
		c.misses.Inc()
		return value, false
	}

	// Setting an existing key keeps the value and resets its expiration.
	_ = c.cache.Set(key, v)
	c.hits.Inc()

	return v.(V), true //nolint:forcetypeassert
}

// Insert stores value at key with a fresh expiration window. If a different
// value was stored at key, it is evicted first. Inserting the value that is
// already stored only re-arms its window.
// After Close, the value is evicted right away.
func (c *SlidingCache[V]) Insert(key string, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed.IsSet() {
		c.evictions.Inc()
		c.release(key, value)
		return
	}

	// An expired previous value is evicted by the lookup itself.
	if old, err := c.cache.GetIFPresent(key); err == nil && old != any(value) {
		c.cache.Remove(key)
	}
	_ = c.cache.Set(key, value)
}

// Sweep evicts all expired entries and returns how many were evicted.
func (c *SlidingCache[V]) Sweep() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	before := c.cache.Len(false)
	for _, key := range c.cache.Keys(false) {
		// Looking up an expired entry evicts it.
		_, _ = c.cache.GetIFPresent(key)
	}
	return before - c.cache.Len(false)
}

// Len returns the amount of stored entries, including expired entries that
// have not been evicted yet.
func (c *SlidingCache[V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.cache.Len(false)
}

// Start starts the background sweeper. It stops when ctx is canceled or the
// cache is closed. Calling Start more than once has no effect.
func (c *SlidingCache[V]) Start(ctx context.Context) {
	if !c.started.SetToIf(false, true) {
		return
	}

	go func() {
		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Close stops the sweeper and evicts all entries.
func (c *SlidingCache[V]) Close() {
	if !c.closed.SetToIf(false, true) {
		return
	}
	close(c.stop)

	c.lock.Lock()
	defer c.lock.Unlock()
	c.cache.Purge()
}
