package cliclient

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLoginExpired means the device code lapsed or was already used.
	ErrLoginExpired = errors.New("login expired, run `orca login` again")
	// ErrUnexpectedStatus is a poll answer this client does not understand.
	ErrUnexpectedStatus = errors.New("unexpected poll status")
)

// maxPollInterval caps the client-side slow_down doubling.
const maxPollInterval = 60 * time.Second

// LoginOptions describe the device being authorized.
type LoginOptions struct {
	DeviceName        string
	DeviceFingerprint string
}

// LoginResult is a freshly minted CLI token.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
}

// Login runs the device flow: it requests a code, hands it to prompt so the
// user can approve it in a browser, then polls until the server answers.
//
// The loop honors the server's interval, doubles it on slow_down, gives up on
// expired or once the code's lifetime has passed, and stops when ctx is done.
func Login(
	ctx context.Context,
	c *Client,
	opts LoginOptions,
	prompt func(*StartResponse),
) (*LoginResult, error) {
	start, err := c.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start login: %w", err)
	}
	if prompt != nil {
		prompt(start)
	}

	interval := time.Duration(max(start.Interval, 1)) * time.Second
	deadline := time.Now().Add(time.Duration(start.ExpiresIn) * time.Second)
	req := PollRequest{
		DeviceCode:        start.DeviceCode,
		DeviceName:        opts.DeviceName,
		DeviceFingerprint: opts.DeviceFingerprint,
	}

	for {
		if start.ExpiresIn > 0 && time.Now().After(deadline) {
			return nil, ErrLoginExpired
		}

		poll, err := c.Poll(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to poll login: %w", err)
		}

		switch poll.Status {
		case StatusOK:
			return &LoginResult{
				Token:     poll.AccessToken,
				ExpiresIn: time.Duration(poll.ExpiresIn) * time.Second,
			}, nil
		case StatusExpired:
			return nil, ErrLoginExpired
		case StatusPending, StatusAuthorizationPending:
			if poll.Interval > 0 {
				interval = time.Duration(poll.Interval) * time.Second
			}
		case StatusSlowDown:
			interval = min(max(interval*2, time.Duration(poll.Interval)*time.Second), maxPollInterval)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedStatus, poll.Status)
		}

		if err := c.wait(ctx, interval); err != nil {
			return nil, err
		}
	}
}
