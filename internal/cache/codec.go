package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCacheMiss is returned by Get when the key is absent or expired.
	ErrCacheMiss = errors.New("cache: miss")

	// ErrCacheUnavailable wraps transport errors from a redis backend.
	ErrCacheUnavailable = errors.New("cache: redis unavailable")

	// ErrInvalidValue means an entry could not be encoded or decoded as JSON.
	ErrInvalidValue = errors.New("cache: undecodable entry")
)

// encode serializes a cached value. Redis-backed caches store JSON so that
// entries written by one replica can be read by another.
func encode[T any](value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return string(b), nil
}

func decode[T any](raw string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return value, nil
}

// getter and setter are the halves of a cache needed by fetchAside.
type getter[T any] func(ctx context.Context, key string) (T, error)

type setter[T any] func(ctx context.Context, key string, value T, ttl time.Duration) error

// fetchAside is the plain cache-aside read: serve a hit, otherwise load and
// store. A failed store does not fail the read.
func fetchAside[T any](
	ctx context.Context,
	get getter[T],
	set setter[T],
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := get(ctx, key); err == nil {
		return value, nil
	}
	value, err := fetchFunc(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = set(ctx, key, value, ttl)
	return value, nil
}
