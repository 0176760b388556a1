package bootstrap

import (
	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/handlers"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"
)

// handlerSet holds all HTTP handlers and the validators the auth middleware needs
type handlerSet struct {
	device    *handlers.DeviceHandler
	cliToken  *handlers.CliTokenHandler
	session   *handlers.SessionHandler
	audit     *handlers.AuditHandler
	sessions  *services.SessionService
	cliTokens *services.CliTokenService
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	svc serviceSet,
	auditService *services.AuditService,
) handlerSet {
	return handlerSet{
		device:    handlers.NewDeviceHandler(svc.devices),
		cliToken:  handlers.NewCliTokenHandler(svc.cliTokens),
		session:   handlers.NewSessionHandler(svc.sessions, svc.users, cfg),
		audit:     handlers.NewAuditHandler(auditService),
		sessions:  svc.sessions,
		cliTokens: svc.cliTokens,
	}
}
