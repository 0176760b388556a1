package store

import (
	"context"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"

	"gorm.io/gorm"
)

// TakeRateLimitSlot counts the events recorded for scope/key inside
// (now-window, now] and, when fewer than limit, records one more. Rejected
// attempts are not recorded. It reports whether the slot was granted.
func (s *Store) TakeRateLimitSlot(
	ctx context.Context,
	scope, key string,
	limit int,
	window time.Duration,
	now time.Time,
) (bool, error) {
	allowed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == DriverPostgres {
			// Serialize concurrent takers of the same key across instances.
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", scope+":"+key).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&models.RateLimitEvent{}).
			Where("scope = ? AND subject = ? AND created_at > ?", scope, key, now.Add(-window)).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(limit) {
			return nil
		}

		allowed = true
		return tx.Create(&models.RateLimitEvent{
			Scope:     scope,
			Key:       key,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// PruneRateLimitEvents deletes events recorded before cutoff.
func (s *Store) PruneRateLimitEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.RateLimitEvent{})
	return result.RowsAffected, result.Error
}
