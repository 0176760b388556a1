package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/util"
)

const (
	// userCodeCharset omits 0, O, 1, I and L.
	userCodeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	userCodeLength  = 8

	deviceCodeBytes = 48

	// maxUserCodeAttempts bounds retries on a user code collision.
	maxUserCodeAttempts = 5
)

// DeviceAuthorizationResult is what StartDeviceAuth hands back to the CLI.
// DeviceCode is the only copy of the raw secret.
type DeviceAuthorizationResult struct {
	DeviceCode      string
	UserCode        string
	VerificationURL string
	ExpiresIn       int // seconds
	Interval        int // seconds
}

type DeviceService struct {
	store        *store.Store
	config       *config.Config
	limiter      *RateLimiter
	cliTokens    *CliTokenService
	auditService *AuditService
	metrics      core.Recorder
	now          func() time.Time
}

func NewDeviceService(
	s *store.Store,
	cfg *config.Config,
	limiter *RateLimiter,
	cliTokens *CliTokenService,
	auditService *AuditService,
	m core.Recorder,
) *DeviceService {
	return &DeviceService{
		store:        s,
		config:       cfg,
		limiter:      limiter,
		cliTokens:    cliTokens,
		auditService: auditService,
		metrics:      m,
		now:          utcNow,
	}
}

// StartDeviceAuth issues a new device code / user code pair for the CLI.
// originAddress feeds the per-address rate limit and may be empty.
func (s *DeviceService) StartDeviceAuth(
	ctx context.Context,
	originAddress string,
) (*DeviceAuthorizationResult, error) {
	now := s.now()

	if err := s.limiter.Take(ctx, originAddress, now); err != nil {
		if errors.Is(err, ErrRateLimitExceeded) {
			s.metrics.RecordDeviceCodeIssued("rate_limited")
			s.auditService.Log(ctx, AuditLogEntry{
				EventType:    models.EventDeviceCodeRateLimited,
				Severity:     models.SeverityWarning,
				ActorIP:      originAddress,
				ResourceType: models.ResourceDeviceCode,
				Action:       "Device code issuance rate limited",
				Success:      false,
			})
			return nil, err
		}
		s.metrics.RecordDatabaseQueryError("take_rate_limit_slot")
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}

	deviceCode, err := util.RandomURLToken(deviceCodeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate device code: %w", err)
	}

	da := &models.DeviceAuthorization{
		DeviceCode:     deviceCode,
		DeviceCodeHash: util.SHA256Hex(deviceCode),
		ExpiresAt:      now.Add(s.config.DeviceCodeExpiration),
		Interval:       s.config.PollingInterval,
		OriginAddress:  originAddress,
		CreatedAt:      now,
	}

	for attempt := 1; ; attempt++ {
		da.ID = ""
		da.UserCode, err = generateUserCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate user code: %w", err)
		}

		err = s.store.CreateDeviceAuthorization(ctx, da)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicateKey) || attempt >= maxUserCodeAttempts {
			s.metrics.RecordDeviceCodeIssued("error")
			s.metrics.RecordDatabaseQueryError("create_device_authorization")
			return nil, fmt.Errorf("failed to store device authorization: %w", err)
		}
		log.Printf("[DeviceAuth] user code collision, retrying (attempt %d)", attempt)
	}

	s.metrics.RecordDeviceCodeIssued("success")
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventDeviceCodeIssued,
		Severity:     models.SeverityInfo,
		ActorIP:      originAddress,
		ResourceType: models.ResourceDeviceCode,
		ResourceID:   da.ID,
		Action:       "Device code issued",
		Details:      models.AuditDetails{"user_code": da.UserCode},
		Success:      true,
	})

	return &DeviceAuthorizationResult{
		DeviceCode:      deviceCode,
		UserCode:        da.UserCode,
		VerificationURL: util.VerificationURL(s.config.FrontendURL, da.UserCode),
		ExpiresIn:       int(s.config.DeviceCodeExpiration.Seconds()),
		Interval:        da.Interval,
	}, nil
}

// ApproveDeviceAuth binds userID to the pending authorization identified by
// userCode. Approving an already approved code succeeds without changes.
//
// There is no challenge binding the browser to the CLI: anyone signed in who
// learns a live code can approve it as themselves. The code space, the short
// TTL and the issuance and poll limits are what bound that exposure.
func (s *DeviceService) ApproveDeviceAuth(ctx context.Context, userID, userCode string) error {
	code := normalizeUserCode(userCode)
	if len(code) != userCodeLength {
		return ErrInvalidOrExpiredCode
	}

	da, err := s.store.GetDeviceAuthorizationByUserCode(ctx, code)
	if errors.Is(err, store.ErrRecordNotFound) {
		return ErrInvalidOrExpiredCode
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_device_authorization")
		return err
	}

	now := s.now()
	if da.IsExpired(now) {
		s.expire(ctx, da)
		return ErrInvalidOrExpiredCode
	}
	if da.IsApproved() {
		return nil
	}

	approved, err := s.store.ApproveDeviceAuthorization(ctx, da.ID, userID, now)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("approve_device_authorization")
		return err
	}
	if !approved {
		// Lost a race with another approval of the same code.
		return nil
	}

	s.metrics.RecordDeviceCodeApproved(now.Sub(da.CreatedAt))
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventDeviceCodeApproved,
		Severity:     models.SeverityInfo,
		ActorUserID:  userID,
		ResourceType: models.ResourceDeviceCode,
		ResourceID:   da.ID,
		Action:       "Device code approved",
		Details:      models.AuditDetails{"user_code": da.UserCode},
		Success:      true,
	})
	log.Printf("[DeviceAuth] user=%s approved device authorization %s", userID, da.ID)
	return nil
}

// expire deletes a record found past its expiry.
func (s *DeviceService) expire(ctx context.Context, da *models.DeviceAuthorization) {
	if err := s.store.DeleteDeviceAuthorization(ctx, da.ID); err != nil {
		log.Printf("[DeviceAuth] failed to delete expired authorization %s: %v", da.ID, err)
		return
	}
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventDeviceCodeExpired,
		Severity:     models.SeverityInfo,
		ResourceType: models.ResourceDeviceCode,
		ResourceID:   da.ID,
		Action:       "Device code expired",
		Success:      true,
	})
}

// SweepExpired deletes authorizations that expired more than grace ago.
func (s *DeviceService) SweepExpired(ctx context.Context, grace time.Duration) (int64, error) {
	return s.store.DeleteExpiredDeviceAuthorizations(ctx, s.now().Add(-grace))
}

// generateUserCode draws userCodeLength characters uniformly from userCodeCharset.
func generateUserCode() (string, error) {
	limit := big.NewInt(int64(len(userCodeCharset)))
	var b strings.Builder
	b.Grow(userCodeLength)
	for range userCodeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(userCodeCharset[n.Int64()])
	}
	return b.String(), nil
}

// normalizeUserCode accepts the code as typed: any case, spaces and an
// optional XXXX-XXXX dash.
func normalizeUserCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.ReplaceAll(code, "-", "")
}
