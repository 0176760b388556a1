package bootstrap

import (
	"log"
	"strings"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	warnDefaultSecrets(cfg)
}

// warnDefaultSecrets flags placeholder secrets outside production.
// Production rejects the JWT placeholder in Validate.
func warnDefaultSecrets(cfg *config.Config) {
	if strings.Contains(cfg.JWTSecret, "change-in-production") {
		log.Println("WARNING: JWT_SECRET is the built-in default, set a random value before deploying")
	}
	if strings.Contains(cfg.SessionSecret, "change-in-production") {
		if cfg.IsProduction {
			log.Fatalf("Invalid configuration: SESSION_SECRET must be set in production")
		}
		log.Println("WARNING: SESSION_SECRET is the built-in default, set a random value before deploying")
	}
}
