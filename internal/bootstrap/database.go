package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
)

// dbRetryDelay spaces connection attempts while postgres is still starting.
const dbRetryDelay = 2 * time.Second

// initializeDatabase opens and migrates the store, retrying until
// DBInitTimeout runs out. An unknown driver fails on the first attempt.
func initializeDatabase(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		db, err := store.New(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err == nil {
			log.Printf("Database ready (driver: %s, attempts: %d)", cfg.DatabaseDriver, attempt)
			return db, nil
		}
		if errors.Is(err, store.ErrUnsupportedDriver) {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Printf("Database not ready (attempt %d): %v", attempt, err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to initialize database after %d attempts: %w", attempt, err)
		case <-time.After(dbRetryDelay):
		}
	}
}
