package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/cache"
	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/metrics"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		FrontendURL:             "https://app.orca.test",
		DeviceCodeExpiration:    10 * time.Minute,
		PollingInterval:         2,
		MaxPollingInterval:      60,
		MaxPollAttempts:         300,
		ExpireOnMaxPollAttempts: false,
		DeviceCodeRateLimit:     10,
		DeviceCodeRateWindow:    time.Hour,
		CliTokenExpiration:      30 * 24 * time.Hour,
		CliTokenTouchInterval:   time.Minute,
		DefaultCliTokenLabel:    "cli",
		MaxCliTokenLabelLength:  100,
		RefreshTokenTTL:         30 * 24 * time.Hour,
	}
}

// testEnv wires every service against one SQLite store and a shared clock.
type testEnv struct {
	store     *store.Store
	cfg       *config.Config
	clock     *testClock
	audit     *AuditService
	limiter   *RateLimiter
	cliTokens *CliTokenService
	devices   *DeviceService
	users     *UserService
	sessions  *SessionService
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := setupTestStore(t)
	clock := &testClock{now: testEpoch}
	m := metrics.NewNoopMetrics()
	audit := NewAuditService(s, false, 10)
	limiter := NewRateLimiter(s, RateLimitScopeDeviceCode, cfg.DeviceCodeRateLimit, cfg.DeviceCodeRateWindow)

	cliTokens := NewCliTokenService(s, cfg, audit, m)
	cliTokens.now = clock.Now

	devices := NewDeviceService(s, cfg, limiter, cliTokens, audit, m)
	devices.now = clock.Now

	users := NewUserService(s, audit, cache.NewMemoryCache[models.User](), 5*time.Minute)

	provider := token.NewLocalTokenProvider("test-secret-at-least-32-bytes-long!!", "orca-test", 15*time.Minute)
	sessions := NewSessionService(s, provider, users, audit, m, cfg.RefreshTokenTTL)
	sessions.now = clock.Now

	return &testEnv{
		store:     s,
		cfg:       cfg,
		clock:     clock,
		audit:     audit,
		limiter:   limiter,
		cliTokens: cliTokens,
		devices:   devices,
		users:     users,
		sessions:  sessions,
	}
}

func makeTestUser(t *testing.T, s *store.Store) *models.User {
	t.Helper()
	email := uuid.New().String()[:8] + "@example.com"
	u := &models.User{
		ID:         uuid.New().String(),
		Email:      &email,
		Name:       "Test User",
		AuthSource: models.AuthSourceGoogle,
		Role:       "user",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// issueCliToken runs the whole device flow and returns the raw CLI token.
func (e *testEnv) issueCliToken(t *testing.T, userID, deviceName string) string {
	t.Helper()
	ctx := context.Background()

	res, err := e.devices.StartDeviceAuth(ctx, "")
	require.NoError(t, err)
	require.NoError(t, e.devices.ApproveDeviceAuth(ctx, userID, res.UserCode))

	poll, err := e.devices.PollDeviceAuth(ctx, PollRequest{
		DeviceCode: res.DeviceCode,
		DeviceName: deviceName,
	})
	require.NoError(t, err)
	require.Equal(t, PollOK, poll.Status)
	return poll.AccessToken
}
