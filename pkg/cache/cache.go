// Package cache provides a generic in-process cache with optional expiry.
package cache

import "time"

// Cache defines the basic interface for a generic cache
type Cache[K comparable, V any] interface {
	// Set adds or updates an item using the cache's default TTL
	Set(key K, value V)
	// SetWithTTL adds or updates an item; ttl <= 0 never expires
	SetWithTTL(key K, value V, ttl time.Duration)
	// Get retrieves an unexpired item from the cache
	Get(key K) (V, bool)
	// Del removes an item from the cache
	Del(key K)
	// Len returns the number of unexpired items
	Len() int
	// Keys returns all unexpired keys
	Keys() []K
	// Clear removes all items from the cache
	Clear()
}
