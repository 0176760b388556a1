package bootstrap

import (
	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/token"
)

// tokenIssuer is the iss claim on browser access tokens.
const tokenIssuer = "orca"

// serviceSet holds the business services shared by handlers and background jobs.
type serviceSet struct {
	limiter   *services.RateLimiter
	cliTokens *services.CliTokenService
	devices   *services.DeviceService
	users     *services.UserService
	sessions  *services.SessionService
}

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	auditService *services.AuditService,
	prometheusMetrics core.Recorder,
	userCache core.Cache[models.User],
) serviceSet {
	limiter := services.NewRateLimiter(
		db,
		services.RateLimitScopeDeviceCode,
		cfg.DeviceCodeRateLimit,
		cfg.DeviceCodeRateWindow,
	)
	cliTokens := services.NewCliTokenService(db, cfg, auditService, prometheusMetrics)
	devices := services.NewDeviceService(db, cfg, limiter, cliTokens, auditService, prometheusMetrics)
	users := services.NewUserService(db, auditService, userCache, cfg.UserCacheTTL)

	accessTokens := token.NewLocalTokenProvider(cfg.JWTSecret, tokenIssuer, cfg.AccessTokenTTL)
	sessions := services.NewSessionService(
		db,
		accessTokens,
		users,
		auditService,
		prometheusMetrics,
		cfg.RefreshTokenTTL,
	)

	return serviceSet{
		limiter:   limiter,
		cliTokens: cliTokens,
		devices:   devices,
		users:     users,
		sessions:  sessions,
	}
}
