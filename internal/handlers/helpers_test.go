package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/cache"
	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/metrics"
	"github.com/vanthaita/Orca-CLI-sub000/internal/middleware"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/token"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router   *gin.Engine
	cfg      *config.Config
	store    *store.Store
	sessions *services.SessionService
}

func testConfig() *config.Config {
	return &config.Config{
		FrontendURL:            "https://app.orca.test",
		APIPrefix:              "/api/v1",
		AccessTokenTTL:         15 * time.Minute,
		RefreshTokenTTL:        30 * 24 * time.Hour,
		DeviceCodeExpiration:   10 * time.Minute,
		PollingInterval:        2,
		MaxPollingInterval:     60,
		MaxPollAttempts:        300,
		DeviceCodeRateLimit:    3,
		DeviceCodeRateWindow:   time.Hour,
		CliTokenExpiration:     30 * 24 * time.Hour,
		CliTokenTouchInterval:  time.Minute,
		DefaultCliTokenLabel:   "cli",
		MaxCliTokenLabelLength: 100,
	}
}

// newTestServer wires the real services over an in-memory SQLite store and
// mounts the routes the same way the server does.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	s, err := store.New(context.Background(), store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	m := metrics.NewNoopMetrics()
	audit := services.NewAuditService(s, false, 10)
	limiter := services.NewRateLimiter(
		s, services.RateLimitScopeDeviceCode, cfg.DeviceCodeRateLimit, cfg.DeviceCodeRateWindow,
	)
	cliTokens := services.NewCliTokenService(s, cfg, audit, m)
	devices := services.NewDeviceService(s, cfg, limiter, cliTokens, audit, m)
	users := services.NewUserService(s, audit, cache.NewMemoryCache[models.User](), time.Minute)
	provider := token.NewLocalTokenProvider("test-secret-at-least-32-bytes-long!!", "orca-test", cfg.AccessTokenTTL)
	sessionService := services.NewSessionService(s, provider, users, audit, m, cfg.RefreshTokenTTL)

	deviceHandler := NewDeviceHandler(devices)
	tokenHandler := NewCliTokenHandler(cliTokens)
	sessionHandler := NewSessionHandler(sessionService, users, cfg)
	auditHandler := NewAuditHandler(audit)

	r := gin.New()
	r.Use(sessions.Sessions("orca_session", cookie.NewStore([]byte("test-session-secret"))))

	auth := r.Group(cfg.APIPrefix + "/auth")
	auth.GET("/cli/start", deviceHandler.Start)
	auth.POST("/cli/start", deviceHandler.Start)
	auth.POST("/cli/poll", deviceHandler.Poll)
	auth.POST("/refresh", sessionHandler.Refresh)
	auth.GET("/me", middleware.RequireAnyAuth(sessionService, cliTokens), sessionHandler.Me)

	browser := auth.Group("")
	browser.Use(middleware.RequireSession(sessionService), middleware.CSRFMiddleware())
	browser.GET("/csrf", sessionHandler.CSRF)
	browser.POST("/cli/verify", deviceHandler.Verify)
	browser.GET("/cli/tokens", tokenHandler.List)
	browser.POST("/cli/tokens/:id/revoke", tokenHandler.Revoke)
	browser.POST("/cli/tokens/:id/rename", tokenHandler.Rename)
	browser.GET("/audit", auditHandler.ListMine)
	auth.POST("/logout",
		middleware.RequireSessionOrRefresh(sessionService, sessionService),
		middleware.CSRFMiddleware(),
		sessionHandler.Logout,
	)

	return &testServer{router: r, cfg: cfg, store: s, sessions: sessionService}
}

// browserSession is a signed-in browser: its cookies plus a CSRF token.
type browserSession struct {
	tokens  *services.SessionTokens
	cookies []*http.Cookie
	csrf    string
}

func (ts *testServer) signIn(t *testing.T, externalID string) *browserSession {
	t.Helper()
	tokens, err := ts.sessions.SignIn(context.Background(), core.ExternalProfile{
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		Name:       "Tester " + externalID,
	})
	require.NoError(t, err)

	b := &browserSession{
		tokens: tokens,
		cookies: []*http.Cookie{
			{Name: middleware.AccessTokenCookie, Value: tokens.AccessToken},
			{Name: middleware.RefreshTokenCookie, Value: tokens.RefreshToken.Token},
		},
	}

	w := ts.do(t, http.MethodGet, "/api/v1/auth/csrf", nil, b)
	require.Equal(t, http.StatusOK, w.Code)
	b.csrf = decode(t, w)["csrfToken"].(string)
	require.NotEmpty(t, b.csrf)
	for _, c := range w.Result().Cookies() {
		if c.Name == "orca_session" {
			b.cookies = append(b.cookies, c)
		}
	}
	return b
}

// do sends a request; b may be nil for anonymous callers.
func (ts *testServer) do(t *testing.T, method, path string, body any, b *browserSession) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.7:51234"

	if b != nil {
		for _, c := range b.cookies {
			req.AddCookie(c)
		}
		if b.csrf != "" {
			req.Header.Set("X-CSRF-Token", b.csrf)
		}
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) doBearer(t *testing.T, method, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bearer)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// loginCli runs start, approve and poll for the browser user and returns the CLI token.
func (ts *testServer) loginCli(t *testing.T, b *browserSession, deviceName string) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/v1/auth/cli/start", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	start := decode(t, w)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/cli/verify", gin.H{"userCode": start["userCode"]}, b)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/cli/poll", gin.H{
		"deviceCode": start["deviceCode"],
		"deviceName": deviceName,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	poll := decode(t, w)
	require.Equal(t, "ok", poll["status"])
	return poll["accessToken"].(string)
}
