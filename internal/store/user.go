package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUserByID loads a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateUser creates a new user
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

// UpsertExternalUser resolves a verified external profile to a local user.
// It matches on external ID first, then on email (linking the account),
// and creates a new user when neither matches.
func (s *Store) UpsertExternalUser(
	ctx context.Context,
	profile core.ExternalProfile,
	authSource string,
) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("external_id = ? AND auth_source = ?", profile.ExternalID, authSource).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) && profile.Email != "" {
			err = tx.Where("email = ?", profile.Email).First(&user).Error
		}

		switch {
		case err == nil:
			user.ExternalID = &profile.ExternalID
			user.AuthSource = authSource
			if profile.Email != "" {
				user.Email = &profile.Email
			}
			if profile.Name != "" {
				user.Name = profile.Name
			}
			if profile.Picture != "" {
				user.Picture = profile.Picture
			}
			if err := tx.Save(&user).Error; err != nil {
				return fmt.Errorf("failed to update external user: %w", translate(err))
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				ID:         uuid.New().String(),
				ExternalID: &profile.ExternalID,
				AuthSource: authSource,
				Name:       profile.Name,
				Picture:    profile.Picture,
				Role:       "user",
			}
			if profile.Email != "" {
				user.Email = &profile.Email
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create external user: %w", translate(err))
			}
			return nil
		default:
			return fmt.Errorf("failed to query external user: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("refresh_token_hash = ?", hash).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// SetRefreshToken overwrites the user's refresh slot unconditionally.
func (s *Store) SetRefreshToken(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"refresh_token_hash":       hash,
			"refresh_token_expires_at": expiresAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// RotateRefreshToken swaps oldHash for newHash only while oldHash is still
// the one in the slot, so two concurrent rotations cannot both win.
func (s *Store) RotateRefreshToken(
	ctx context.Context,
	userID, oldHash, newHash string,
	expiresAt time.Time,
) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND refresh_token_hash = ?", userID, oldHash).
		Updates(map[string]any{
			"refresh_token_hash":       newHash,
			"refresh_token_expires_at": expiresAt,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenStale
	}
	return nil
}

// ClearRefreshToken empties the user's refresh slot.
func (s *Store) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"refresh_token_hash":       nil,
			"refresh_token_expires_at": nil,
		}).Error
}
