package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidisaside"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
)

var _ core.Cache[struct{}] = (*RueidisAsideCache[struct{}])(nil)

// RueidisAsideCache layers RESP3 client-side caching over Redis. Reads are
// served locally until Redis invalidates the key, and GetWithFetch collapses
// concurrent misses for a key into a single fetch across all replicas.
type RueidisAsideCache[T any] struct {
	client    rueidisaside.CacheAsideClient
	keyPrefix string
	clientTTL time.Duration
}

// NewRueidisAsideCache connects to Redis with client-side caching enabled.
// clientTTL bounds how long a local copy lives; cacheSizeMB is per connection.
func NewRueidisAsideCache[T any](
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
	clientTTL time.Duration,
	cacheSizeMB int,
) (*RueidisAsideCache[T], error) {
	client, err := rueidisaside.NewClient(rueidisaside.ClientOption{
		ClientOption: rueidis.ClientOption{
			InitAddress:       []string{addr},
			Password:          password,
			SelectDB:          db,
			CacheSizeEachConn: cacheSizeMB * 1024 * 1024,
		},
		ClientTTL: clientTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rueidisaside client: %w", err)
	}

	inner := client.Client()
	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RueidisAsideCache[T]{
		client:    client,
		keyPrefix: keyPrefix,
		clientTTL: clientTTL,
	}, nil
}

func (r *RueidisAsideCache[T]) key(k string) string {
	return r.keyPrefix + k
}

// Get consults the local cache first and then Redis. It never populates an
// absent key.
func (r *RueidisAsideCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	inner := r.client.Client()

	raw, err := inner.DoCache(ctx, inner.B().Get().Key(r.key(key)).Cache(), r.clientTTL).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return zero, ErrCacheMiss
	case err != nil:
		return zero, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return decode[T](raw)
}

func (r *RueidisAsideCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	inner := r.client.Client()
	if err := inner.Do(ctx, inner.B().Set().Key(r.key(key)).Value(raw).Ex(ttl).Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (r *RueidisAsideCache[T]) MGet(ctx context.Context, keys []string) (map[string]T, error) {
	result := make(map[string]T, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	inner := r.client.Client()
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = r.key(k)
	}

	values, err := inner.DoCache(ctx, inner.B().Mget().Key(fullKeys...).Cache(), r.clientTTL).ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	for i, v := range values {
		raw, err := v.ToString()
		if err != nil {
			continue
		}
		if item, err := decode[T](raw); err == nil {
			result[keys[i]] = item
		}
	}
	return result, nil
}

func (r *RueidisAsideCache[T]) MSet(ctx context.Context, values map[string]T, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	inner := r.client.Client()
	cmds := make(rueidis.Commands, 0, len(values))
	for k, v := range values {
		raw, err := encode(v)
		if err != nil {
			return err
		}
		cmds = append(cmds, inner.B().Set().Key(r.key(k)).Value(raw).Ex(ttl).Build())
	}
	for _, resp := range inner.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
	}
	return nil
}

// Delete removes the key and invalidates every replica's local copy.
func (r *RueidisAsideCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (r *RueidisAsideCache[T]) Close() error {
	r.client.Close()
	return nil
}

func (r *RueidisAsideCache[T]) Health(ctx context.Context) error {
	inner := r.client.Client()
	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// GetWithFetch uses rueidisaside's distributed lock so only one caller per
// key runs fetchFunc. Errors from fetchFunc are returned unwrapped.
func (r *RueidisAsideCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	var zero T
	var fetchErr error

	raw, err := r.client.Get(ctx, ttl, r.key(key), func(ctx context.Context, _ string) (string, error) {
		value, err := fetchFunc(ctx, key)
		if err != nil {
			fetchErr = err
			return "", err
		}
		return encode(value)
	})
	if err != nil {
		if fetchErr != nil && errors.Is(err, fetchErr) {
			return zero, fetchErr
		}
		return zero, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return decode[T](raw)
}
