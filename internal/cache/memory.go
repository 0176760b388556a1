package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

var _ core.Cache[struct{}] = (*MemoryCache[struct{}])(nil)

// MemoryCache is a process-local Cache. Expired entries are skipped on read
// and dropped by Prune; single-replica deployments only.
type MemoryCache[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	now   func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{
		items: make(map[string]entry[T]),
		now:   time.Now,
	}
}

func (m *MemoryCache[T]) Get(_ context.Context, key string) (T, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || !e.live(m.now()) {
		var zero T
		return zero, ErrCacheMiss
	}
	return e.value, nil
}

func (m *MemoryCache[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	m.items[key] = entry[T]{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[T]) MGet(_ context.Context, keys []string) (map[string]T, error) {
	now := m.now()
	result := make(map[string]T, len(keys))

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, key := range keys {
		if e, ok := m.items[key]; ok && e.live(now) {
			result[key] = e.value
		}
	}
	return result, nil
}

func (m *MemoryCache[T]) MSet(_ context.Context, values map[string]T, ttl time.Duration) error {
	expiresAt := m.now().Add(ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range values {
		m.items[key] = entry[T]{value: value, expiresAt: expiresAt}
	}
	return nil
}

func (m *MemoryCache[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Prune drops expired entries and reports how many were removed.
func (m *MemoryCache[T]) Prune() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, e := range m.items {
		if !e.live(now) {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryCache[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	m.items = make(map[string]entry[T])
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[T]) Health(context.Context) error {
	return nil
}

// GetWithFetch reads through to fetchFunc on a miss. Concurrent misses for
// the same key each call fetchFunc.
func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	return fetchAside(ctx, m.Get, m.Set, key, ttl, fetchFunc)
}
