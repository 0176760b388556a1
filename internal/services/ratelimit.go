package services

import (
	"context"
	"log"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
)

// Rate limit scopes sharing the rate_limit_events table.
const (
	RateLimitScopeDeviceCode = "device_code"
)

// RateLimiter bounds how often one key may perform an action inside a
// rolling window. Counts live in the database so every instance sees them.
type RateLimiter struct {
	store  *store.Store
	scope  string
	limit  int
	window time.Duration
}

func NewRateLimiter(s *store.Store, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{store: s, scope: scope, limit: limit, window: window}
}

// Take consumes one slot for key at now. An empty key is never limited:
// callers without a known origin address are not throttled here.
func (r *RateLimiter) Take(ctx context.Context, key string, now time.Time) error {
	if key == "" {
		return nil
	}

	allowed, err := r.store.TakeRateLimitSlot(ctx, r.scope, key, r.limit, r.window, now)
	if err != nil {
		return err
	}
	if !allowed {
		log.Printf("[RateLimit] scope=%s key=%s exceeded %d per %s", r.scope, key, r.limit, r.window)
		return ErrRateLimitExceeded
	}
	return nil
}

// Prune removes events that can no longer affect any window.
func (r *RateLimiter) Prune(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	if retention < r.window {
		retention = r.window
	}
	return r.store.PruneRateLimitEvents(ctx, now.Add(-retention))
}
