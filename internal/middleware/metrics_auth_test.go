package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const (
	testToken = "test-secret-token-123"
)

func newMetricsRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsAuthMiddleware(token))
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, "metrics")
	})
	return r
}

func TestMetricsAuthMiddleware_NoAuthConfigured(t *testing.T) {
	r := newMetricsRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "metrics", w.Body.String())
}

func TestMetricsAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantCode   int
		wantBody   string
	}{
		{"valid token", "Bearer " + testToken, http.StatusOK, "metrics"},
		{"invalid token", "Bearer wrong-token", http.StatusUnauthorized, "Invalid token"},
		{"no header", "", http.StatusUnauthorized, "Bearer token required"},
		{"wrong scheme", "Basic dGVzdDp0ZXN0", http.StatusUnauthorized, "Bearer token required"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Bearer token required"},
		{"token prefix only", "Bearer test-secret", http.StatusUnauthorized, "Invalid token"},
	}

	r := newMetricsRouter(testToken)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="Metrics"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}
