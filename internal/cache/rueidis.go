package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
)

var _ core.Cache[struct{}] = (*RueidisCache[struct{}])(nil)

// RueidisCache stores JSON-encoded values in Redis so every replica sees the
// same entries.
type RueidisCache[T any] struct {
	client    rueidis.Client
	keyPrefix string
}

// NewRueidisCache connects to Redis and verifies the connection with PING.
func NewRueidisCache[T any](
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RueidisCache[T], error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return newRueidisCacheWithClient[T](client, keyPrefix), nil
}

func newRueidisCacheWithClient[T any](client rueidis.Client, keyPrefix string) *RueidisCache[T] {
	return &RueidisCache[T]{client: client, keyPrefix: keyPrefix}
}

func (r *RueidisCache[T]) key(k string) string {
	return r.keyPrefix + k
}

func (r *RueidisCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	raw, err := r.client.Do(ctx, r.client.B().Get().Key(r.key(key)).Build()).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return zero, ErrCacheMiss
	case err != nil:
		return zero, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return decode[T](raw)
}

func (r *RueidisCache[T]) setCommand(key string, value T, ttl time.Duration) (rueidis.Completed, error) {
	raw, err := encode(value)
	if err != nil {
		return rueidis.Completed{}, err
	}
	return r.client.B().Set().Key(r.key(key)).Value(raw).Ex(ttl).Build(), nil
}

func (r *RueidisCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	cmd, err := r.setCommand(key, value, ttl)
	if err != nil {
		return err
	}
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// MGet skips keys that are missing or hold undecodable values.
func (r *RueidisCache[T]) MGet(ctx context.Context, keys []string) (map[string]T, error) {
	result := make(map[string]T, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = r.key(k)
	}

	values, err := r.client.Do(ctx, r.client.B().Mget().Key(fullKeys...).Build()).ToArray()
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

// MSet pipelines one SET per key.
func (r *RueidisCache[T]) MSet(ctx context.Context, values map[string]T, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(values))
	for k, v := range values {
		cmd, err := r.setCommand(k, v, ttl)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	for _, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
	}
	return nil
}

func (r *RueidisCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(r.key(key)).Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (r *RueidisCache[T]) Close() error {
	r.client.Close()
	return nil
}

func (r *RueidisCache[T]) Health(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (r *RueidisCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	return fetchAside(ctx, r.Get, r.Set, key, ttl, fetchFunc)
}
