package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
)

type UserService struct {
	store        *store.Store
	auditService *AuditService
	userCache    core.Cache[models.User]
	userCacheTTL time.Duration
}

func NewUserService(
	s *store.Store,
	auditService *AuditService,
	userCache core.Cache[models.User],
	userCacheTTL time.Duration,
) *UserService {
	return &UserService{
		store:        s,
		auditService: auditService,
		userCache:    userCache,
		userCacheTTL: userCacheTTL,
	}
}

func userCacheKey(id string) string {
	return "user:" + id
}

// GetUserByID reads through the user cache.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userCache.GetWithFetch(
		ctx,
		userCacheKey(id),
		s.userCacheTTL,
		func(ctx context.Context, _ string) (models.User, error) {
			u, err := s.store.GetUserByID(ctx, id)
			if err != nil {
				if errors.Is(err, store.ErrRecordNotFound) {
					return models.User{}, ErrUserNotFound
				}
				return models.User{}, err
			}
			return *u, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResolveExternalUser finds or creates the local user for a verified
// identity-provider profile and drops any cached copy.
func (s *UserService) ResolveExternalUser(
	ctx context.Context,
	profile core.ExternalProfile,
) (*models.User, error) {
	if profile.ExternalID == "" {
		return nil, fmt.Errorf("%w: external profile without subject", ErrUnauthorized)
	}

	user, err := s.store.UpsertExternalUser(ctx, profile, models.AuthSourceGoogle)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve external user: %w", err)
	}
	s.InvalidateUserCache(ctx, user.ID)
	return user, nil
}

// InvalidateUserCache removes a user entry from the cache.
func (s *UserService) InvalidateUserCache(ctx context.Context, userID string) {
	if err := s.userCache.Delete(ctx, userCacheKey(userID)); err != nil {
		log.Printf("[User] failed to invalidate cache for user=%s: %v", userID, err)
	}
}
