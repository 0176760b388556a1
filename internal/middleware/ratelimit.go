package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType defines the type of rate limit store
type RateLimitStoreType string

const (
	// RateLimitStoreMemory uses in-memory storage (single instance only)
	RateLimitStoreMemory RateLimitStoreType = "memory"
	// RateLimitStoreRedis uses Redis storage (distributed, multi-pod support)
	RateLimitStoreRedis RateLimitStoreType = "redis"
)

// RateLimitConfig holds the configuration for per-IP request throttling
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration // How often expired counters are dropped

	StoreType RateLimitStoreType // "memory" or "redis"

	// RedisClient is shared across limiters and owned by the caller.
	// Required when StoreType is redis.
	RedisClient *redis.Client

	// Prefix separates the counters of different endpoints in a shared store
	Prefix string

	// AuditService, when set, records each rejected request
	AuditService *services.AuditService
}

// NewRateLimiter creates a per-client-IP limiter middleware with the configured store backend
func NewRateLimiter(config RateLimitConfig) (gin.HandlerFunc, error) {
	if config.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", config.RequestsPerMinute)
	}

	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(config.RequestsPerMinute),
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = "orca:ratelimit"
	}
	cleanup := config.CleanupInterval
	if cleanup <= 0 {
		cleanup = limiter.DefaultCleanUpInterval
	}

	var store limiter.Store
	switch config.StoreType {
	case RateLimitStoreRedis:
		if config.RedisClient == nil {
			return nil, errors.New("redis rate limit store requires a redis client")
		}
		var err error
		store, err = limiterRedis.NewStoreWithOptions(config.RedisClient, limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: cleanup,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}

	case RateLimitStoreMemory, "":
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: cleanup,
		})

	default:
		return nil, fmt.Errorf("unknown rate limit store %q", config.StoreType)
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(
		instance,
		mgin.WithLimitReachedHandler(limitReached(config.AuditService, config.RequestsPerMinute)),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// A broken limiter store should not take the API down with it
			log.Printf("[RateLimit] store error, letting request through: %v", err)
			c.Next()
		}),
	), nil
}

func limitReached(auditService *services.AuditService, limit int) func(*gin.Context) {
	return func(c *gin.Context) {
		if auditService != nil {
			auditService.Log(c.Request.Context(), services.AuditLogEntry{
				EventType:     models.EventRateLimitExceeded,
				Severity:      models.SeverityWarning,
				ActorIP:       c.ClientIP(),
				Action:        "Request rate limited",
				Details:       models.AuditDetails{"limit_per_minute": limit},
				Success:       false,
				UserAgent:     c.Request.UserAgent(),
				RequestPath:   c.Request.URL.Path,
				RequestMethod: c.Request.Method,
			})
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":             "rate_limit_exceeded",
			"error_description": "Too many requests. Please try again later.",
		})
	}
}

// NewMemoryRateLimiter creates an in-memory rate limiter (single instance)
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   5 * time.Minute,
	})
}
