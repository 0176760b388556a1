package bootstrap

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/metrics"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, srv *http.Server, timeout time.Duration) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Println("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
			return err
		}
		log.Println("Redis connection closed")
		return nil
	})
}

// addStorageShutdownJob drains the audit buffer and then closes the database.
// Shutdown jobs run concurrently, so both steps share one job.
func addStorageShutdownJob(
	m *graceful.Manager,
	auditService *services.AuditService,
	db *store.Store,
) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down audit service: %v", err)
		}

		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
			return err
		}
		log.Println("Database closed")
		return nil
	})
}

// addPeriodicJob runs fn immediately and then every interval until shutdown.
func addPeriodicJob(m *graceful.Manager, interval time.Duration, fn func(ctx context.Context)) {
	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ticker.C:
				fn(ctx)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addDeviceSweepJob deletes device authorizations that expired more than
// the grace period ago.
func addDeviceSweepJob(
	m *graceful.Manager,
	cfg *config.Config,
	deviceService *services.DeviceService,
) {
	if cfg.DeviceSweepInterval <= 0 {
		return
	}

	addPeriodicJob(m, cfg.DeviceSweepInterval, func(ctx context.Context) {
		deleted, err := deviceService.SweepExpired(ctx, cfg.DeviceSweepGracePeriod)
		if err != nil {
			log.Printf("[DeviceAuth] Sweep failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("[DeviceAuth] Swept %d expired device authorizations", deleted)
		}
	})
}

// addRateLimitPruneJob drops issuance events that can no longer count
// against any window.
func addRateLimitPruneJob(
	m *graceful.Manager,
	cfg *config.Config,
	limiter *services.RateLimiter,
) {
	if cfg.RateLimitEventsRetention <= 0 {
		return
	}

	addPeriodicJob(m, cfg.RateLimitEventsRetention/4, func(ctx context.Context) {
		retention := max(cfg.RateLimitEventsRetention, cfg.DeviceCodeRateWindow)
		deleted, err := limiter.Prune(ctx, time.Now().UTC(), retention)
		if err != nil {
			log.Printf("[RateLimit] Prune failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("[RateLimit] Pruned %d rate limit events", deleted)
		}
	})
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !cfg.EnableAuditLogging || cfg.AuditLogRetention <= 0 {
		return
	}

	addPeriodicJob(m, 24*time.Hour, func(ctx context.Context) {
		if deleted, err := auditService.CleanupOldLogs(ctx, cfg.AuditLogRetention); err != nil {
			log.Printf("Failed to cleanup old audit logs: %v", err)
		} else if deleted > 0 {
			log.Printf("Cleaned up %d old audit logs", deleted)
		}
	})
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	prometheusMetrics metrics.Recorder,
	metricsCache core.Cache[int64],
) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || metricsCache == nil {
		return
	}

	cacheWrapper := metrics.NewCacheWrapper(db, metricsCache)
	addPeriodicJob(m, cfg.MetricsGaugeUpdateInterval, func(ctx context.Context) {
		updateGaugeMetricsWithCache(
			ctx,
			cacheWrapper,
			prometheusMetrics,
			cfg.MetricsGaugeUpdateInterval,
		)
	})
}

// addCacheCleanupJob closes a cache on shutdown
func addCacheCleanupJob(m *graceful.Manager, name string, closer func() error) {
	if closer == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := closer(); err != nil {
			log.Printf("Error closing %s cache: %v", name, err)
		} else {
			log.Printf("%s cache closed", name)
		}
		return nil
	})
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) {
	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]

	if !exists || now.Sub(lastTime) >= e.rateLimitWindow {
		log.Printf("Database query failed for %s: %v (further errors will be suppressed for %v)",
			operation, err, e.rateLimitWindow)
		e.lastErrorTimes[operation] = now
	}
}

var gaugeErrorLogger = newErrorLogger()

// updateGaugeMetricsWithCache refreshes the gauges through the shared count cache.
// The cache TTL matches the update interval so instances take turns hitting the database.
func updateGaugeMetricsWithCache(
	ctx context.Context,
	cacheWrapper *metrics.CacheWrapper,
	m metrics.Recorder,
	cacheTTL time.Duration,
) {
	activeCliTokens, err := cacheWrapper.GetActiveCliTokensCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_active_cli_tokens")
		gaugeErrorLogger.logIfNeeded("count_active_cli_tokens", err)
	} else {
		m.SetActiveCliTokensCount(int(activeCliTokens))
	}

	liveDevices, err := cacheWrapper.GetLiveDeviceAuthorizationsCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_live_device_authorizations")
		gaugeErrorLogger.logIfNeeded("count_live_device_authorizations", err)
		liveDevices = 0
	}

	pendingDevices, err := cacheWrapper.GetPendingDeviceAuthorizationsCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_pending_device_authorizations")
		gaugeErrorLogger.logIfNeeded("count_pending_device_authorizations", err)
		pendingDevices = 0
	}

	m.SetDeviceAuthorizationsCount(int(liveDevices), int(pendingDevices))
}
