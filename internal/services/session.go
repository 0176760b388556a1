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
	"github.com/vanthaita/Orca-CLI-sub000/internal/util"
)

const refreshTokenBytes = 48

var _ core.AccessTokenValidator = (*SessionService)(nil)

// RefreshToken is a freshly issued refresh secret and its expiry.
type RefreshToken struct {
	Token     string
	ExpiresAt time.Time
}

// SessionTokens is the browser credential pair.
type SessionTokens struct {
	UserID               string
	AccessToken          string
	AccessTokenExpiresAt time.Time
	RefreshToken         RefreshToken
}

// SessionService issues the browser's access token and maintains the
// single refresh-token slot on the user record.
//
// The slot holds one refresh token per user. Signing in or rotating on one
// browser invalidates the refresh token held by any other; that browser has
// to sign in again once its access token expires.
type SessionService struct {
	store         *store.Store
	tokenProvider core.AccessTokenProvider
	userService   *UserService
	auditService  *AuditService
	metrics       core.Recorder
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewSessionService(
	s *store.Store,
	tokenProvider core.AccessTokenProvider,
	userService *UserService,
	auditService *AuditService,
	m core.Recorder,
	refreshTTL time.Duration,
) *SessionService {
	return &SessionService{
		store:         s,
		tokenProvider: tokenProvider,
		userService:   userService,
		auditService:  auditService,
		metrics:       m,
		refreshTTL:    refreshTTL,
		now:           utcNow,
	}
}

// IssueAccessToken signs a short-lived token carrying only userID.
func (s *SessionService) IssueAccessToken(ctx context.Context, userID string) (*core.TokenResult, error) {
	return s.tokenProvider.GenerateAccessToken(ctx, userID)
}

// IssueAndStoreRefreshToken generates a refresh token and overwrites the
// user's slot with its hash.
func (s *SessionService) IssueAndStoreRefreshToken(ctx context.Context, userID string) (*RefreshToken, error) {
	raw, err := util.RandomURLToken(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	expiresAt := s.now().Add(s.refreshTTL)

	if err := s.store.SetRefreshToken(ctx, userID, util.SHA256Hex(raw), expiresAt); err != nil {
		s.metrics.RecordDatabaseQueryError("set_refresh_token")
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &RefreshToken{Token: raw, ExpiresAt: expiresAt}, nil
}

// SignIn resolves a verified external profile and starts a session for it.
func (s *SessionService) SignIn(ctx context.Context, profile core.ExternalProfile) (*SessionTokens, error) {
	user, err := s.userService.ResolveExternalUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSessionIssued()
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventSessionSignedIn,
		Severity:     models.SeverityInfo,
		ActorUserID:  user.ID,
		ResourceType: models.ResourceSession,
		ResourceID:   user.ID,
		Action:       "Session started",
		Success:      true,
	})
	return tokens, nil
}

func (s *SessionService) issuePair(ctx context.Context, userID string) (*SessionTokens, error) {
	access, err := s.IssueAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueAndStoreRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SessionTokens{
		UserID:               userID,
		AccessToken:          access.TokenString,
		AccessTokenExpiresAt: access.ExpiresAt,
		RefreshToken:         *refresh,
	}, nil
}

// RotateRefreshToken exchanges a refresh token for a new access token and
// a new refresh token. The presented token stops working as soon as this
// returns, whoever presented it; of two concurrent rotations only one wins.
func (s *SessionService) RotateRefreshToken(ctx context.Context, rawToken string) (*SessionTokens, error) {
	if rawToken == "" {
		return nil, ErrUnauthorized
	}
	oldHash := util.SHA256Hex(rawToken)

	user, err := s.store.GetUserByRefreshTokenHash(ctx, oldHash)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, s.rejectRefresh(ctx, "", "unknown refresh token")
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_user_by_refresh_token")
		return nil, err
	}

	now := s.now()
	if !user.HasRefreshToken(now) {
		return nil, s.rejectRefresh(ctx, user.ID, "refresh token expired")
	}

	access, err := s.IssueAccessToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	raw, err := util.RandomURLToken(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	expiresAt := now.Add(s.refreshTTL)

	err = s.store.RotateRefreshToken(ctx, user.ID, oldHash, util.SHA256Hex(raw), expiresAt)
	if errors.Is(err, store.ErrRefreshTokenStale) {
		return nil, s.rejectRefresh(ctx, user.ID, "refresh token already rotated")
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("rotate_refresh_token")
		return nil, err
	}

	s.metrics.RecordSessionRotation(true)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventSessionRefreshed,
		Severity:     models.SeverityInfo,
		ActorUserID:  user.ID,
		ResourceType: models.ResourceSession,
		ResourceID:   user.ID,
		Action:       "Session refreshed",
		Success:      true,
	})

	return &SessionTokens{
		UserID:               user.ID,
		AccessToken:          access.TokenString,
		AccessTokenExpiresAt: access.ExpiresAt,
		RefreshToken:         RefreshToken{Token: raw, ExpiresAt: expiresAt},
	}, nil
}

func (s *SessionService) rejectRefresh(ctx context.Context, userID, reason string) error {
	s.metrics.RecordSessionRotation(false)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventSessionRefreshRejected,
		Severity:     models.SeverityWarning,
		ActorUserID:  userID,
		ResourceType: models.ResourceSession,
		ResourceID:   userID,
		Action:       "Refresh rejected",
		Success:      false,
		ErrorMessage: reason,
	})
	log.Printf("[Session] refresh rejected user=%q: %s", userID, reason)
	return ErrUnauthorized
}

// ClearSession empties the user's refresh slot (logout).
func (s *SessionService) ClearSession(ctx context.Context, userID string) error {
	if err := s.store.ClearRefreshToken(ctx, userID); err != nil {
		s.metrics.RecordDatabaseQueryError("clear_refresh_token")
		return err
	}

	s.metrics.RecordLogout()
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventLogout,
		Severity:     models.SeverityInfo,
		ActorUserID:  userID,
		ResourceType: models.ResourceSession,
		ResourceID:   userID,
		Action:       "Logged out",
		Success:      true,
	})
	return nil
}

// ValidateRefreshToken returns the owner of a live refresh token. It does
// not rotate the token; logout uses it once the access token has lapsed.
func (s *SessionService) ValidateRefreshToken(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", ErrUnauthorized
	}
	user, err := s.store.GetUserByRefreshTokenHash(ctx, util.SHA256Hex(rawToken))
	if errors.Is(err, store.ErrRecordNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_user_by_refresh_token")
		return "", err
	}
	if !user.HasRefreshToken(s.now()) {
		return "", ErrUnauthorized
	}
	return user.ID, nil
}

// ValidateAccessToken returns the subject of a valid access token.
func (s *SessionService) ValidateAccessToken(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", ErrUnauthorized
	}
	result, err := s.tokenProvider.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return result.Subject, nil
}
