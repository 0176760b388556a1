package core

import (
	"context"
	"time"
)

// Cache[T] is the key-value cache shared by the user lookup path
// (Cache[models.User]) and the gauge refresher (Cache[int64]).
// Backends live in internal/cache: in-process memory, redis via rueidis,
// and redis with client-side caching via rueidisaside.
type Cache[T any] interface {
	// Get returns cache.ErrCacheMiss for absent or expired keys.
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, value T, ttl time.Duration) error

	// MGet omits missing keys from the result instead of failing.
	MGet(ctx context.Context, keys []string) (map[string]T, error)
	MSet(ctx context.Context, values map[string]T, ttl time.Duration) error

	// Delete is used to evict a user after a profile change.
	Delete(ctx context.Context, key string) error

	Close() error
	Health(ctx context.Context) error

	// GetWithFetch serves key from cache, falling back to fetchFunc and
	// storing its result. A fetch error is returned as is and nothing is
	// stored. The redis-aside backend collapses concurrent misses.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetchFunc func(ctx context.Context, key string) (T, error),
	) (T, error)
}
