package cliclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitRecorder replaces real sleeping so backoff is observable and instant.
type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

func (w *waitRecorder) recorded() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

func newTestClient(t *testing.T, server string) (*Client, *waitRecorder) {
	t.Helper()
	c, err := New(WithServer(server), WithRetry(2, 10*time.Millisecond, 40*time.Millisecond))
	require.NoError(t, err)
	rec := &waitRecorder{}
	c.wait = rec.wait
	return c, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{"no server", nil, "server is required"},
		{"blank server", []Option{WithServer("  ")}, "server is required"},
		{"bad scheme", []Option{WithServer("ftp://orca.test")}, "scheme must be http or https"},
		{"negative retries", []Option{WithServer("https://orca.test"), WithRetry(-1, 0, 0)}, "invalid retry settings"},
		{"nil http client", []Option{WithServer("https://orca.test"), WithHTTPClient(nil)}, "http client is nil"},
		{"ok", []Option{WithServer("https://orca.test/")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://orca.test", c.Server())
		})
	}
}

func TestEndpoint_APIPrefix(t *testing.T) {
	c, err := New(WithServer("https://orca.test"))
	require.NoError(t, err)
	assert.Equal(t, "https://orca.test/api/v1/auth/cli/start", c.endpoint("/cli/start"))

	c, err = New(WithServer("https://orca.test"), WithAPIPrefix(""))
	require.NoError(t, err)
	assert.Equal(t, "https://orca.test/auth/me", c.endpoint("/me"))

	c, err = New(WithServer("https://orca.test"), WithAPIPrefix("/v2/"))
	require.NoError(t, err)
	assert.Equal(t, "https://orca.test/v2/auth/me", c.endpoint("/me"))
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		resp     *http.Response
		expected bool
	}{
		{"network error", errors.New("connection refused"), nil, true},
		{"cancelled", context.Canceled, nil, false},
		{"deadline", context.DeadlineExceeded, nil, false},
		{"200", nil, &http.Response{StatusCode: http.StatusOK}, false},
		{"400", nil, &http.Response{StatusCode: http.StatusBadRequest}, false},
		{"401", nil, &http.Response{StatusCode: http.StatusUnauthorized}, false},
		{"429", nil, &http.Response{StatusCode: http.StatusTooManyRequests}, false},
		{"500", nil, &http.Response{StatusCode: http.StatusInternalServerError}, true},
		{"503", nil, &http.Response{StatusCode: http.StatusServiceUnavailable}, true},
		{"nil response", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, retryable(tt.err, tt.resp))
		})
	}
}

func TestStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/cli/start", r.URL.Path)
		assert.Equal(t, "orca-cli", r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, StartResponse{
			DeviceCode:      "dc",
			UserCode:        "ABCD2345",
			VerificationURL: "https://app.orca.test/cli/verify?userCode=ABCD2345",
			ExpiresIn:       600,
			Interval:        2,
		})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	start, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD2345", start.UserCode)
	assert.Equal(t, 600, start.ExpiresIn)
	assert.Equal(t, 2, start.Interval)
}

func TestStart_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, StartResponse{DeviceCode: "dc", UserCode: "ABCD2345", Interval: 2})
	}))
	defer srv.Close()

	c, rec := newTestClient(t, srv.URL)
	start, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dc", start.DeviceCode)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, rec.recorded())
}

func TestStart_RetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := c.Start(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "server_error", apiErr.Code)
	// 1 initial attempt + 2 retries
	assert.Equal(t, int32(3), attempts.Load())
}

func TestStart_NoRetryOnClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"rate limited", http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"bad request", http.StatusBadRequest, "invalid_request"},
		{"unauthorized", http.StatusUnauthorized, "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				writeJSON(w, tt.status, map[string]string{
					"error":             tt.code,
					"error_description": "nope",
				})
			}))
			defer srv.Close()

			c, rec := newTestClient(t, srv.URL)
			_, err := c.Start(context.Background())

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, int32(1), attempts.Load())
			assert.Empty(t, rec.recorded())
		})
	}
}

func TestIsRateLimited(t *testing.T) {
	err := error(&APIError{StatusCode: http.StatusTooManyRequests})
	assert.True(t, IsRateLimited(err))
	assert.False(t, IsUnauthorized(err))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, IsRateLimited(errors.New("boom")))
}

func TestStart_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, rec := newTestClient(t, url)
	_, err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed after 2 retries")
	assert.Len(t, rec.recorded(), 2)
}

func TestPoll_ResendsBodyOnRetry(t *testing.T) {
	var (
		attempts atomic.Int32
		mu       sync.Mutex
		bodies   []PollRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body PollRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()

		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, PollResponse{Status: StatusPending, Interval: 2})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	poll, err := c.Poll(context.Background(), PollRequest{DeviceCode: "dc", DeviceName: "laptop"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, poll.Status)

	require.Len(t, bodies, 2)
	for _, b := range bodies {
		assert.Equal(t, "dc", b.DeviceCode)
		assert.Equal(t, "laptop", b.DeviceName)
	}
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, Profile{ID: "u1", Email: "ada@example.com", AuthMethod: "cli_token"})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)

	me, err := c.Me(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, "cli_token", me.AuthMethod)

	_, err = c.Me(context.Background(), "revoked")
	assert.True(t, IsUnauthorized(err))
}

func TestCall_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
