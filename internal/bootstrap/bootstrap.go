package bootstrap

import (
	"context"
	"net/http"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/metrics"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      metrics.Recorder
	MetricsCache         core.Cache[int64]
	MetricsCacheCloser   func() error
	UserCache            core.Cache[models.User]
	UserCacheCloser      func() error
	RateLimitRedisClient *redis.Client

	// Services
	AuditService *services.AuditService
	Services     serviceSet

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(context.Background()); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, caches, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, app.MetricsCacheCloser, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}

	app.UserCache, app.UserCacheCloser, err = initializeUserCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	// Audit service (required by other services)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	app.Services = initializeServices(
		app.Config,
		app.DB,
		app.AuditService,
		app.MetricsRecorder,
		app.UserCache,
	)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(app.Config, app.Services, app.AuditService)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.AuditService,
		app.RateLimitRedisClient,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Running jobs
	addServerRunningJob(m, app.Server)
	addDeviceSweepJob(m, app.Config, app.Services.devices)
	addRateLimitPruneJob(m, app.Config, app.Services.limiter)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addMetricsGaugeUpdateJob(m, app.Config, app.DB, app.MetricsRecorder, app.MetricsCache)

	// Shutdown jobs
	addServerShutdownJob(m, app.Server, app.Config.ShutdownTimeout)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)
	addStorageShutdownJob(m, app.AuditService, app.DB)
	addCacheCleanupJob(m, "Metrics", app.MetricsCacheCloser)
	addCacheCleanupJob(m, "User", app.UserCacheCloser)

	<-m.Done()
}
