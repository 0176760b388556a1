package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"

	"github.com/redis/go-redis/v9"
)

// rateLimitClientName shows up in CLIENT LIST next to the rueidis cache clients.
const rateLimitClientName = "orca-ratelimit"

// initializeRateLimitRedisClient returns the go-redis client backing the
// per-IP limiters on /cli/start, /cli/poll, /cli/verify and /refresh.
// ulule/limiter only speaks go-redis, so this client is separate from the
// rueidis clients used by the caches. It returns nil when rate limiting is
// off or kept in memory.
func initializeRateLimitRedisClient(
	ctx context.Context,
	cfg *config.Config,
) (*redis.Client, error) {
	if !cfg.EnableRateLimit || cfg.RateLimitStore != config.RateLimitStoreRedis {
		return nil, nil //nolint:nilnil // no client in this configuration
	}

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		ClientName: rateLimitClientName,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("rate limit redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("Rate limit store: redis %s/%d", cfg.RedisAddr, cfg.RedisDB)
	return client, nil
}
