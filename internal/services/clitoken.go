package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/util"

	"github.com/google/uuid"
)

const cliTokenBytes = 48

var _ core.CliTokenValidator = (*CliTokenService)(nil)

// DeviceMetadata describes the machine a CLI token is minted for.
type DeviceMetadata struct {
	DeviceName        string
	DeviceFingerprint string
	OriginAddress     string
	UserAgent         string
}

type CliTokenService struct {
	store        *store.Store
	config       *config.Config
	auditService *AuditService
	metrics      core.Recorder
	now          func() time.Time
}

func NewCliTokenService(
	s *store.Store,
	cfg *config.Config,
	auditService *AuditService,
	m core.Recorder,
) *CliTokenService {
	return &CliTokenService{
		store:        s,
		config:       cfg,
		auditService: auditService,
		metrics:      m,
		now:          utcNow,
	}
}

// Mint builds an unsaved CLI token for userID. RawToken holds the secret;
// only TokenHash is persisted, so the caller must hand RawToken out before
// dropping the struct.
func (s *CliTokenService) Mint(userID string, meta DeviceMetadata) (*models.CliToken, error) {
	raw, err := util.RandomURLToken(cliTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cli token: %w", err)
	}

	now := s.now()
	token := &models.CliToken{
		ID:            uuid.New().String(),
		TokenHash:     util.SHA256Hex(raw),
		RawToken:      raw,
		UserID:        userID,
		Label:         s.defaultLabel(meta.DeviceName),
		DeviceName:    truncate(meta.DeviceName, 255),
		OriginAddress: truncate(meta.OriginAddress, 45),
		UserAgent:     truncate(meta.UserAgent, 500),
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.config.CliTokenExpiration),
	}
	if meta.DeviceFingerprint != "" {
		fp := truncate(meta.DeviceFingerprint, 255)
		token.DeviceFingerprint = &fp
	}
	return token, nil
}

func (s *CliTokenService) defaultLabel(deviceName string) string {
	label := strings.TrimSpace(deviceName)
	if label == "" {
		label = s.config.DefaultCliTokenLabel
	}
	return truncate(label, s.config.MaxCliTokenLabelLength)
}

// recordIssued reports a token that has just been persisted.
func (s *CliTokenService) recordIssued(ctx context.Context, token *models.CliToken) {
	s.metrics.RecordCliTokenIssued()
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventCliTokenIssued,
		Severity:     models.SeverityInfo,
		ActorUserID:  token.UserID,
		ActorIP:      token.OriginAddress,
		ResourceType: models.ResourceCliToken,
		ResourceID:   token.ID,
		ResourceName: token.Label,
		Action:       "CLI token issued",
		Details:      models.AuditDetails{"device_name": token.DeviceName},
		Success:      true,
		UserAgent:    token.UserAgent,
	})
}

// ListCliTokens returns the user's tokens, revoked ones included, newest first.
func (s *CliTokenService) ListCliTokens(ctx context.Context, userID string) ([]models.CliToken, error) {
	tokens, err := s.store.ListCliTokensByUserID(ctx, userID)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("list_cli_tokens")
		return nil, err
	}
	return tokens, nil
}

// RevokeCliToken permanently revokes a token owned by userID. Revoking an
// already revoked token succeeds.
func (s *CliTokenService) RevokeCliToken(ctx context.Context, userID, tokenID string) error {
	revoked, err := s.store.RevokeCliToken(ctx, userID, tokenID, s.now())
	if err != nil {
		s.metrics.RecordDatabaseQueryError("revoke_cli_token")
		return err
	}
	if !revoked {
		if _, err := s.store.GetCliTokenForUser(ctx, userID, tokenID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return ErrCliTokenNotFound
			}
			return err
		}
		return nil
	}

	s.metrics.RecordCliTokenRevoked()
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventCliTokenRevoked,
		Severity:     models.SeverityInfo,
		ActorUserID:  userID,
		ResourceType: models.ResourceCliToken,
		ResourceID:   tokenID,
		Action:       "CLI token revoked",
		Success:      true,
	})
	log.Printf("[CliToken] user=%s revoked token %s", userID, tokenID)
	return nil
}

// RenameCliToken changes the display label of a token owned by userID.
func (s *CliTokenService) RenameCliToken(ctx context.Context, userID, tokenID, label string) error {
	label = strings.TrimSpace(label)
	if label == "" || utf8.RuneCountInString(label) > s.config.MaxCliTokenLabelLength {
		return ErrInvalidLabel
	}

	renamed, err := s.store.RenameCliToken(ctx, userID, tokenID, label)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("rename_cli_token")
		return err
	}
	if !renamed {
		return ErrCliTokenNotFound
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventCliTokenRenamed,
		Severity:     models.SeverityInfo,
		ActorUserID:  userID,
		ResourceType: models.ResourceCliToken,
		ResourceID:   tokenID,
		ResourceName: label,
		Action:       "CLI token renamed",
		Success:      true,
	})
	return nil
}

// ValidateCliToken resolves a raw CLI token to its owner. Unknown, revoked
// and expired tokens all fail with ErrUnauthorized.
func (s *CliTokenService) ValidateCliToken(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		s.metrics.RecordCliTokenValidation("invalid")
		return "", ErrUnauthorized
	}

	token, err := s.store.GetCliTokenByHash(ctx, util.SHA256Hex(rawToken))
	if errors.Is(err, store.ErrRecordNotFound) {
		s.metrics.RecordCliTokenValidation("invalid")
		return "", ErrUnauthorized
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_cli_token")
		return "", err
	}

	now := s.now()
	switch {
	case token.IsRevoked():
		s.metrics.RecordCliTokenValidation("revoked")
		return "", ErrUnauthorized
	case token.IsExpired(now):
		s.metrics.RecordCliTokenValidation("expired")
		return "", ErrUnauthorized
	}

	s.touch(ctx, token, now)
	s.metrics.RecordCliTokenValidation("valid")
	return token.UserID, nil
}

// touch records last use at most once per CliTokenTouchInterval.
func (s *CliTokenService) touch(ctx context.Context, token *models.CliToken, now time.Time) {
	notBefore := now.Add(-s.config.CliTokenTouchInterval)
	if token.LastUsedAt != nil && token.LastUsedAt.After(notBefore) {
		return
	}
	if err := s.store.TouchCliToken(ctx, token.ID, now, notBefore); err != nil {
		log.Printf("[CliToken] failed to update last use of %s: %v", token.ID, err)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
