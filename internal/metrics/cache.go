package metrics

import (
	"context"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
)

// CacheWrapper provides a read-through cache for gauge counts.
// It queries the database on cache miss and updates the cache for subsequent requests,
// so several instances sharing a Redis cache issue one COUNT per interval between them.
type CacheWrapper struct {
	store core.MetricsStore
	cache core.Cache[int64]
	now   func() time.Time
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(store core.MetricsStore, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetActiveCliTokensCount retrieves the count of unrevoked, unexpired CLI tokens.
func (m *CacheWrapper) GetActiveCliTokensCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(ctx, "cli_tokens:active", ttl, m.store.CountActiveCliTokens)
}

// GetLiveDeviceAuthorizationsCount retrieves the count of unexpired device authorizations.
func (m *CacheWrapper) GetLiveDeviceAuthorizationsCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(
		ctx,
		"devices:live",
		ttl,
		m.store.CountLiveDeviceAuthorizations,
	)
}

// GetPendingDeviceAuthorizationsCount retrieves the count of unexpired, unapproved
// device authorizations.
func (m *CacheWrapper) GetPendingDeviceAuthorizationsCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(
		ctx,
		"devices:pending",
		ttl,
		m.store.CountPendingDeviceAuthorizations,
	)
}

// getCountWithCache retrieves a count using the cache-aside pattern.
func (m *CacheWrapper) getCountWithCache(
	ctx context.Context,
	key string,
	ttl time.Duration,
	count func(ctx context.Context, now time.Time) (int64, error),
) (int64, error) {
	return m.cache.GetWithFetch(
		ctx,
		key,
		ttl,
		func(ctx context.Context, key string) (int64, error) {
			return count(ctx, m.now())
		},
	)
}
