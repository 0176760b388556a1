package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newLimitedRouter(t *testing.T, limiter gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter)
	router.POST("/cli/poll", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
	})
	return router
}

func pollFrom(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/cli/poll", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewMemoryRateLimiter(t *testing.T) {
	limiter, err := NewMemoryRateLimiter(5)
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	for i := 0; i < 5; i++ {
		w := pollFrom(router, "192.168.1.100")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	w := pollFrom(router, "192.168.1.100")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestNewRateLimiter_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config RateLimitConfig
	}{
		{"zero rate", RateLimitConfig{RequestsPerMinute: 0}},
		{"redis without client", RateLimitConfig{RequestsPerMinute: 5, StoreType: RateLimitStoreRedis}},
		{"unknown store", RateLimitConfig{RequestsPerMinute: 5, StoreType: "etcd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := NewRateLimiter(tt.config)
			assert.Error(t, err)
			assert.Nil(t, limiter)
		})
	}
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 2,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   time.Minute,
	})
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, pollFrom(router, "10.0.0.1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, pollFrom(router, "10.0.0.1").Code)

	// A different client has its own budget
	assert.Equal(t, http.StatusOK, pollFrom(router, "10.0.0.2").Code)
}

func TestRateLimiter_SeparatePrefixes(t *testing.T) {
	start, err := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, Prefix: "orca:ratelimit:start"})
	require.NoError(t, err)
	poll, err := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, Prefix: "orca:ratelimit:poll"})
	require.NoError(t, err)

	startRouter := newLimitedRouter(t, start)
	pollRouter := newLimitedRouter(t, poll)

	assert.Equal(t, http.StatusOK, pollFrom(startRouter, "10.1.1.1").Code)
	assert.Equal(t, http.StatusOK, pollFrom(pollRouter, "10.1.1.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, pollFrom(pollRouter, "10.1.1.1").Code)
}

func TestRateLimiter_AuditsRejection(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	audit := services.NewAuditService(db, true, 10)

	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 1,
		AuditService:      audit,
	})
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	assert.Equal(t, http.StatusOK, pollFrom(router, "203.0.113.7").Code)
	assert.Equal(t, http.StatusTooManyRequests, pollFrom(router, "203.0.113.7").Code)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, audit.Shutdown(shutdownCtx))

	var logs []models.AuditLog
	require.NoError(t, db.DB().Where("event_type = ?", models.EventRateLimitExceeded).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "203.0.113.7", logs[0].ActorIP)
	assert.Equal(t, "/cli/poll", logs[0].RequestPath)
	assert.False(t, logs[0].Success)
}

// startRedisClient runs a throwaway Redis container, skipping when Docker is absent.
func startRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping Redis test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()
	container, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Skipping Redis test: Docker not available (%v)", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

// Two limiters sharing one Redis behave like two pods behind a load balancer.
func TestRedisRateLimiter_MultiInstance(t *testing.T) {
	client := startRedisClient(t)

	newPod := func() *gin.Engine {
		limiter, err := NewRateLimiter(RateLimitConfig{
			RequestsPerMinute: 5,
			StoreType:         RateLimitStoreRedis,
			RedisClient:       client,
			Prefix:            "orca:ratelimit:poll",
		})
		require.NoError(t, err)
		return newLimitedRouter(t, limiter)
	}
	pod1, pod2 := newPod(), newPod()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, pollFrom(pod1, "192.168.88.1").Code, "pod1 request %d", i+1)
	}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, pollFrom(pod2, "192.168.88.1").Code, "pod2 request %d", i+1)
	}

	assert.Equal(t, http.StatusTooManyRequests, pollFrom(pod1, "192.168.88.1").Code,
		"Shared rate limit should be enforced across pods")
}
