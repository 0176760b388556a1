package bootstrap

import (
	"log"
	"net/http"
	"strings"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/metrics"
	"github.com/vanthaita/Orca-CLI-sub000/internal/middleware"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// sessionCookieName carries the CSRF token session, not the auth tokens.
const sessionCookieName = "orca_session"

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	prometheusMetrics metrics.Recorder,
	auditService *services.AuditService,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	setupSessionMiddleware(r, cfg)

	r.GET("/health", createHealthCheckHandler(db))
	setupMetricsEndpoint(r, cfg)

	rateLimiters := setupRateLimiting(cfg, auditService, rateLimitRedisClient)
	setupAuthRoutes(r, cfg, h, rateLimiters)

	logServerStartup(cfg)
	return r
}

// setupSessionMiddleware configures the cookie session that stores the CSRF token
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAuthRoutes mounts the device flow, CLI token and session endpoints
// under <API_PREFIX>/auth.
func setupAuthRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	auth := r.Group(strings.TrimRight(cfg.APIPrefix, "/") + "/auth")

	// Public: the CLI has no credentials yet, refresh carries its own
	auth.GET("/cli/start", rateLimiters.start, h.device.Start)
	auth.POST("/cli/start", rateLimiters.start, h.device.Start)
	auth.POST("/cli/poll", rateLimiters.poll, h.device.Poll)
	auth.POST("/refresh", rateLimiters.refresh, h.session.Refresh)

	// Either a browser session or a CLI token
	auth.GET("/me", middleware.RequireAnyAuth(h.sessions, h.cliTokens), h.session.Me)

	// Browser only
	browser := auth.Group("")
	browser.Use(middleware.RequireSession(h.sessions), middleware.CSRFMiddleware())
	{
		browser.GET("/csrf", h.session.CSRF)
		browser.POST("/cli/verify", rateLimiters.verify, h.device.Verify)
		browser.GET("/cli/tokens", h.cliToken.List)
		browser.POST("/cli/tokens/:id/revoke", h.cliToken.Revoke)
		browser.POST("/cli/tokens/:id/rename", h.cliToken.Rename)
		browser.GET("/audit", h.audit.ListMine)
	}

	// Logout also accepts the refresh cookie once the access token has lapsed
	auth.POST("/logout",
		middleware.RequireSessionOrRefresh(h.sessions, h.sessions),
		middleware.CSRFMiddleware(),
		h.session.Logout,
	)
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("Orca auth server starting on %s", cfg.ServerAddr)
	log.Printf("API base: %s", cfg.CookiePath())
	log.Printf("Verification URL: %s", util.VerificationURL(cfg.FrontendURL, "XXXXXXXX"))
}
