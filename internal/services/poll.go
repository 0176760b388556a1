package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/util"
)

// PollStatus is the state reported to a polling CLI.
type PollStatus string

const (
	PollPending  PollStatus = "pending"
	PollSlowDown PollStatus = "slow_down"
	PollExpired  PollStatus = "expired"
	PollOK       PollStatus = "ok"
)

// PollRequest carries the device code plus the metadata recorded on the
// CLI token if this poll mints one.
type PollRequest struct {
	DeviceCode        string
	DeviceName        string
	DeviceFingerprint string
	OriginAddress     string
	UserAgent         string
}

// PollResult is the outcome of one poll. Interval is set for pending and
// slow_down; AccessToken and ExpiresIn only for ok.
type PollResult struct {
	Status      PollStatus
	Interval    int
	AccessToken string
	ExpiresIn   int
}

// PollDeviceAuth advances the device flow state machine by one poll.
//
// Unknown and expired codes both yield PollExpired. Polling faster than the
// configured interval yields PollSlowDown with a doubled interval, capped at
// MaxPollingInterval. Every poll counts toward MaxPollAttempts, including
// throttled ones; past the limit the poller gets PollSlowDown at
// MaxPollingInterval unless ExpireOnMaxPollAttempts is set.
// The first poll after approval claims the record and mints a CLI token;
// concurrent pollers that lose the claim see PollExpired.
func (s *DeviceService) PollDeviceAuth(ctx context.Context, req PollRequest) (*PollResult, error) {
	result, err := s.poll(ctx, req)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordDevicePoll(string(result.Status))
	return result, nil
}

func (s *DeviceService) poll(ctx context.Context, req PollRequest) (*PollResult, error) {
	expired := &PollResult{Status: PollExpired}
	if req.DeviceCode == "" {
		return expired, nil
	}

	da, err := s.store.GetDeviceAuthorizationByHash(ctx, util.SHA256Hex(req.DeviceCode))
	if errors.Is(err, store.ErrRecordNotFound) {
		return expired, nil
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_device_authorization")
		return nil, err
	}

	now := s.now()
	if da.IsExpired(now) {
		s.expire(ctx, da)
		return expired, nil
	}

	minInterval := time.Duration(s.config.PollingInterval) * time.Second
	tooSoon := da.LastPollAt != nil && now.Sub(*da.LastPollAt) < minInterval

	da.Attempts++
	da.LastPollAt = &now

	if tooSoon {
		da.Interval = min(max(da.Interval, s.config.PollingInterval)*2, s.config.MaxPollingInterval)
		if err := s.savePoll(ctx, da); err != nil {
			return nil, err
		}
		return &PollResult{Status: PollSlowDown, Interval: da.Interval}, nil
	}

	if da.Attempts > s.config.MaxPollAttempts {
		if s.config.ExpireOnMaxPollAttempts {
			log.Printf("[DeviceAuth] authorization %s exceeded %d polls, expiring", da.ID, s.config.MaxPollAttempts)
			s.expire(ctx, da)
			return expired, nil
		}
		da.Interval = s.config.MaxPollingInterval
		if err := s.savePoll(ctx, da); err != nil {
			return nil, err
		}
		return &PollResult{Status: PollSlowDown, Interval: da.Interval}, nil
	}

	if err := s.savePoll(ctx, da); err != nil {
		return nil, err
	}

	if !da.IsApproved() {
		return &PollResult{Status: PollPending, Interval: da.Interval}, nil
	}

	return s.claim(ctx, da, req)
}

func (s *DeviceService) savePoll(ctx context.Context, da *models.DeviceAuthorization) error {
	if err := s.store.UpdateDeviceAuthorizationPoll(ctx, da); err != nil {
		s.metrics.RecordDatabaseQueryError("update_device_authorization")
		return fmt.Errorf("failed to record poll: %w", err)
	}
	return nil
}

// claim consumes an approved record and mints its CLI token atomically.
func (s *DeviceService) claim(
	ctx context.Context,
	da *models.DeviceAuthorization,
	req PollRequest,
) (*PollResult, error) {
	token, err := s.cliTokens.Mint(*da.UserID, DeviceMetadata{
		DeviceName:        req.DeviceName,
		DeviceFingerprint: req.DeviceFingerprint,
		OriginAddress:     req.OriginAddress,
		UserAgent:         req.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	err = s.store.ClaimDeviceAuthorization(ctx, da.ID, token)
	if errors.Is(err, store.ErrDeviceAuthorizationClaimed) {
		return &PollResult{Status: PollExpired}, nil
	}
	if err != nil {
		s.metrics.RecordDatabaseQueryError("claim_device_authorization")
		return nil, fmt.Errorf("failed to claim device authorization: %w", err)
	}

	s.cliTokens.recordIssued(ctx, token)
	log.Printf("[DeviceAuth] authorization %s consumed, cli token %s issued to user=%s", da.ID, token.ID, token.UserID)

	return &PollResult{
		Status:      PollOK,
		AccessToken: token.RawToken,
		ExpiresIn:   int(s.config.CliTokenExpiration.Seconds()),
	}, nil
}
