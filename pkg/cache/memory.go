package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache implements a thread-safe in-memory cache with per-item expiry.
// Expired items are dropped lazily on access.
type MemoryCache[K comparable, V any] struct {
	mu    sync.RWMutex
	data  map[K]entry[V]
	ttl   time.Duration
	clock clockwork.Clock
}

// Option configures a MemoryCache.
type Option func(*options)

type options struct {
	ttl   time.Duration
	clock clockwork.Clock
}

// WithTTL sets the default TTL used by Set.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock injects the clock used for expiry.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// NewMemoryCache creates a new instance of MemoryCache
func NewMemoryCache[K comparable, V any](opts ...Option) *MemoryCache[K, V] {
	o := &options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(o)
	}
	return &MemoryCache[K, V]{
		data:  make(map[K]entry[V]),
		ttl:   o.ttl,
		clock: o.clock,
	}
}

// Set adds or updates an item in the cache
func (c *MemoryCache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL adds or updates an item with an explicit TTL.
func (c *MemoryCache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}

	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
}

// Get retrieves an item from the cache
func (c *MemoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(c.clock.Now()) {
		c.Del(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Del removes an item from the cache
func (c *MemoryCache[K, V]) Del(key K) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Keys returns all keys in the cache
func (c *MemoryCache[K, V]) Keys() []K {
	now := c.clock.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, len(c.data))
	for k, e := range c.data {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of items in the cache
func (c *MemoryCache[K, V]) Len() int {
	return len(c.Keys())
}

// Clear removes all items from the cache
func (c *MemoryCache[K, V]) Clear() {
	c.mu.Lock()
	c.data = make(map[K]entry[V])
	c.mu.Unlock()
}
