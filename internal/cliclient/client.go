// Package cliclient talks to the Orca auth API on behalf of the command line:
// device login, identity lookup and local credential storage.
package cliclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultServer    = "http://localhost:8000"
	DefaultAPIPrefix = "/api/v1"
)

// Poll statuses as sent by the server.
const (
	StatusPending  = "pending"
	StatusSlowDown = "slow_down"
	StatusExpired  = "expired"
	StatusOK       = "ok"

	// StatusAuthorizationPending is the pending name used by older servers.
	StatusAuthorizationPending = "authorization_pending"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode  int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("server returned %d: %s (%s)", e.StatusCode, e.Code, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// IsRateLimited reports whether err is the server's 429 answer.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized reports whether err is a 401 answer.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// StartResponse is the device code issued by /cli/start.
type StartResponse struct {
	DeviceCode      string `json:"deviceCode"`
	UserCode        string `json:"userCode"`
	VerificationURL string `json:"verificationUrl"`
	ExpiresIn       int    `json:"expiresIn"`
	Interval        int    `json:"interval"`
}

// PollRequest is the body of /cli/poll.
type PollRequest struct {
	DeviceCode        string `json:"deviceCode"`
	DeviceName        string `json:"deviceName,omitempty"`
	DeviceFingerprint string `json:"deviceFingerprint,omitempty"`
}

// PollResponse carries one poll outcome. AccessToken and ExpiresIn are only
// set with StatusOK, Interval only while waiting.
type PollResponse struct {
	Status      string `json:"status"`
	Interval    int    `json:"interval,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	ExpiresIn   int    `json:"expiresIn,omitempty"`
}

// Profile is the signed-in user as returned by /me.
type Profile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	Role       string `json:"role"`
	AuthMethod string `json:"authMethod"`
}

// Client calls the auth API. Safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	apiPrefix string
	http      *http.Client
	userAgent string
	retry     retryPolicy
	wait      func(ctx context.Context, d time.Duration) error
}

type Option func(*Client) error

func New(opts ...Option) (*Client, error) {
	c := &Client{
		apiPrefix: DefaultAPIPrefix,
		http:      &http.Client{Timeout: 10 * time.Second},
		userAgent: "orca-cli",
		retry:     defaultRetryPolicy(),
		wait:      sleepCtx,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.baseURL == nil {
		return nil, errors.New("server is required")
	}
	return c, nil
}

func WithServer(server string) Option {
	return func(c *Client) error {
		server = strings.TrimSpace(server)
		if server == "" {
			return errors.New("server is required")
		}
		parsed, err := url.Parse(strings.TrimRight(server, "/"))
		if err != nil {
			return fmt.Errorf("invalid server: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid server %q: scheme must be http or https", server)
		}
		c.baseURL = parsed
		return nil
	}
}

// WithAPIPrefix sets the path the auth routes are mounted under.
func WithAPIPrefix(prefix string) Option {
	return func(c *Client) error {
		c.apiPrefix = "/" + strings.Trim(prefix, "/")
		if c.apiPrefix == "/" {
			c.apiPrefix = ""
		}
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("http client is nil")
		}
		c.http = httpClient
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

// WithRetry overrides the backoff for network errors and 5xx answers.
// maxRetries of 0 disables retrying.
func WithRetry(maxRetries int, initialDelay, maxDelay time.Duration) Option {
	return func(c *Client) error {
		if maxRetries < 0 || initialDelay < 0 || maxDelay < initialDelay {
			return errors.New("invalid retry settings")
		}
		c.retry.maxRetries = maxRetries
		c.retry.initialRetryDelay = initialDelay
		c.retry.maxRetryDelay = maxDelay
		return nil
	}
}

// Server returns the normalized server URL.
func (c *Client) Server() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + c.apiPrefix + "/auth" + path
}

// Start asks the server for a new device code.
func (c *Client) Start(ctx context.Context) (*StartResponse, error) {
	var out StartResponse
	if err := c.call(ctx, http.MethodPost, "/cli/start", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Poll asks whether the device code has been approved.
func (c *Client) Poll(ctx context.Context, req PollRequest) (*PollResponse, error) {
	var out PollResponse
	if err := c.call(ctx, http.MethodPost, "/cli/poll", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the CLI token to its user.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	var out Profile
	if err := c.call(ctx, http.MethodGet, "/me", nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, token string, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}
