package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/vanthaita/Orca-CLI-sub000/internal/cache"
	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/metrics"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
)

const (
	metricsCachePrefix = "orca:metrics:"
	userCachePrefix    = "orca:users:"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	prometheusMetrics := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return prometheusMetrics
}

// initializeMetricsCache initializes the gauge query cache.
// Returns a nil cache when the gauge job is not going to run.
func initializeMetricsCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[int64], func() error, error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return nil, nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.MetricsCacheType {
	case config.MetricsCacheTypeRedisAside:
		c, err := cache.NewRueidisAsideCache[int64](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			metricsCachePrefix,
			cfg.MetricsCacheClientTTL,
			cfg.MetricsCacheSizePerConn,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis-aside metrics cache: %w", err)
		}
		log.Printf(
			"Metrics cache: redis-aside (addr=%s, db=%d, client_ttl=%s, cache_size_per_conn=%dMB)",
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.MetricsCacheClientTTL,
			cfg.MetricsCacheSizePerConn,
		)
		return c, c.Close, nil

	case config.MetricsCacheTypeRedis:
		c, err := cache.NewRueidisCache[int64](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			metricsCachePrefix,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis metrics cache: %w", err)
		}
		log.Printf("Metrics cache: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[int64]()
		log.Println("Metrics cache: memory (single instance only)")
		return c, c.Close, nil
	}
}

// initializeUserCache initializes the user cache (always enabled, defaults to memory)
func initializeUserCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[models.User], func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.UserCacheType {
	case config.UserCacheTypeRedisAside:
		c, err := cache.NewRueidisAsideCache[models.User](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			userCachePrefix,
			cfg.UserCacheClientTTL,
			cfg.UserCacheSizePerConn,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis-aside user cache: %w", err)
		}
		log.Printf(
			"User cache: redis-aside (addr=%s, db=%d, client_ttl=%s, cache_size_per_conn=%dMB)",
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.UserCacheClientTTL,
			cfg.UserCacheSizePerConn,
		)
		return c, c.Close, nil

	case config.UserCacheTypeRedis:
		c, err := cache.NewRueidisCache[models.User](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			userCachePrefix,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis user cache: %w", err)
		}
		log.Printf("User cache: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[models.User]()
		log.Println("User cache: memory (single instance only)")
		return c, c.Close, nil
	}
}
