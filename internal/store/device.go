package store

import (
	"context"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateDeviceAuthorization inserts a pending record. A user code collision
// surfaces as ErrDuplicateKey.
func (s *Store) CreateDeviceAuthorization(ctx context.Context, da *models.DeviceAuthorization) error {
	if da.ID == "" {
		da.ID = uuid.New().String()
	}
	return translate(s.db.WithContext(ctx).Create(da).Error)
}

func (s *Store) GetDeviceAuthorizationByHash(
	ctx context.Context,
	hash string,
) (*models.DeviceAuthorization, error) {
	var da models.DeviceAuthorization
	err := s.db.WithContext(ctx).Where("device_code_hash = ?", hash).First(&da).Error
	if err != nil {
		return nil, translate(err)
	}
	return &da, nil
}

func (s *Store) GetDeviceAuthorizationByUserCode(
	ctx context.Context,
	userCode string,
) (*models.DeviceAuthorization, error) {
	var da models.DeviceAuthorization
	err := s.db.WithContext(ctx).Where("user_code = ?", userCode).First(&da).Error
	if err != nil {
		return nil, translate(err)
	}
	return &da, nil
}

// UpdateDeviceAuthorizationPoll persists the poll bookkeeping columns only,
// so it never overwrites a concurrent approval.
func (s *Store) UpdateDeviceAuthorizationPoll(ctx context.Context, da *models.DeviceAuthorization) error {
	return s.db.WithContext(ctx).
		Model(&models.DeviceAuthorization{}).
		Where("id = ?", da.ID).
		Updates(map[string]any{
			"attempts":      da.Attempts,
			"last_poll_at":  da.LastPollAt,
			"poll_interval": da.Interval,
		}).Error
}

// ApproveDeviceAuthorization binds userID to a still-pending record.
// It reports false when the record was already approved or is gone.
func (s *Store) ApproveDeviceAuthorization(
	ctx context.Context,
	id, userID string,
	approvedAt time.Time,
) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.DeviceAuthorization{}).
		Where("id = ? AND approved_at IS NULL", id).
		Updates(map[string]any{
			"user_id":     userID,
			"approved_at": approvedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) DeleteDeviceAuthorization(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.DeviceAuthorization{}, "id = ?", id).Error
}

// ClaimDeviceAuthorization consumes an approved record and stores the CLI
// token minted for it in one transaction. Only one caller can delete the
// row; every other caller gets ErrDeviceAuthorizationClaimed and no token
// is written.
func (s *Store) ClaimDeviceAuthorization(
	ctx context.Context,
	deviceAuthID string,
	token *models.CliToken,
) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id IS NOT NULL", deviceAuthID).
			Delete(&models.DeviceAuthorization{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDeviceAuthorizationClaimed
		}
		return translate(tx.Create(token).Error)
	})
}

// DeleteExpiredDeviceAuthorizations removes records that expired before cutoff.
func (s *Store) DeleteExpiredDeviceAuthorizations(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.DeviceAuthorization{})
	return result.RowsAffected, result.Error
}
