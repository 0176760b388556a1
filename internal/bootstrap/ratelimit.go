package bootstrap

import (
	"log"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/middleware"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds the per-IP limiters for the public endpoints
type rateLimitMiddlewares struct {
	start   gin.HandlerFunc
	poll    gin.HandlerFunc
	verify  gin.HandlerFunc
	refresh gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	if !cfg.EnableRateLimit {
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{
			start:   noOpMiddleware,
			poll:    noOpMiddleware,
			verify:  noOpMiddleware,
			refresh: noOpMiddleware,
		}
	}
	return createRateLimiters(cfg, auditService, redisClient)
}

// createRateLimiters creates rate limiting middlewares for all endpoints.
// Each endpoint gets its own key prefix so budgets are not shared.
func createRateLimiters(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		log.Printf("Using shared Redis client for rate limiting")
	} else {
		log.Printf("In-memory rate limiting configured (single instance only)")
	}

	createLimiter := func(requestsPerMinute int, name string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			RedisClient:       redisClient,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			Prefix:            "orca:ratelimit:" + name,
			AuditService:      auditService,
		})
		if err != nil {
			log.Fatalf("Failed to create rate limiter for %s: %v", name, err)
		}
		return limiter
	}

	return rateLimitMiddlewares{
		start:   createLimiter(cfg.StartRateLimit, "cli_start"),
		poll:    createLimiter(cfg.PollRateLimit, "cli_poll"),
		verify:  createLimiter(cfg.VerifyRateLimit, "cli_verify"),
		refresh: createLimiter(cfg.RefreshRateLimit, "refresh"),
	}
}
