// Package cachemanager provides a typed in-memory cache used for
// session-lifetime memoization.
package cachemanager

import (
	"context"
	"time"
)

// NoExpiration marks an entry that never expires.
const NoExpiration time.Duration = -1

// CacheManager is the cache abstraction injected into components that
// memoize results, so tests can substitute a double.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
