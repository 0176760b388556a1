package store

import (
	"context"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
)

// ListCliTokensByUserID returns every token the user owns, revoked ones
// included, newest first.
func (s *Store) ListCliTokensByUserID(ctx context.Context, userID string) ([]models.CliToken, error) {
	var tokens []models.CliToken
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tokens).Error
	return tokens, err
}

func (s *Store) GetCliTokenByHash(ctx context.Context, hash string) (*models.CliToken, error) {
	var t models.CliToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) GetCliTokenForUser(ctx context.Context, userID, id string) (*models.CliToken, error) {
	var t models.CliToken
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// RevokeCliToken sets revoked_at on an owned, not yet revoked token.
// It reports whether a row changed.
func (s *Store) RevokeCliToken(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.CliToken{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", id, userID).
		Update("revoked_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RenameCliToken updates the label of an owned token. It reports false
// when no such token exists for the user.
func (s *Store) RenameCliToken(ctx context.Context, userID, id, label string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.CliToken{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("label", label)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// TouchCliToken records a use at `at`, skipping the write when the last
// recorded use is newer than notBefore.
func (s *Store) TouchCliToken(ctx context.Context, id string, at, notBefore time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.CliToken{}).
		Where("id = ? AND (last_used_at IS NULL OR last_used_at < ?)", id, notBefore).
		Update("last_used_at", at).Error
}
