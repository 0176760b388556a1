package store

import (
	"context"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
)

// CountActiveCliTokens counts tokens that are neither revoked nor expired.
func (s *Store) CountActiveCliTokens(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CliToken{}).
		Where("revoked_at IS NULL AND expires_at > ?", now).
		Count(&count).Error
	return count, err
}

// CountLiveDeviceAuthorizations counts unexpired device authorizations.
func (s *Store) CountLiveDeviceAuthorizations(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DeviceAuthorization{}).
		Where("expires_at > ?", now).
		Count(&count).Error
	return count, err
}

// CountPendingDeviceAuthorizations counts unexpired, unapproved authorizations.
func (s *Store) CountPendingDeviceAuthorizations(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DeviceAuthorization{}).
		Where("expires_at > ? AND approved_at IS NULL", now).
		Count(&count).Error
	return count, err
}
