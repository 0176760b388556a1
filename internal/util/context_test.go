package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetIPContext(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		expected string
	}{
		{name: "Valid IP", ip: "192.168.1.1", expected: "192.168.1.1"},
		{name: "IPv6", ip: "2001:db8::1", expected: "2001:db8::1"},
		{name: "Empty IP", ip: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := SetIPContext(context.Background(), tt.ip)
			assert.NotNil(t, ctx)
			assert.Equal(t, tt.expected, GetIPFromContext(ctx))
		})
	}
}

func TestGetIPFromContext_GinContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IPMiddleware())

	var got, fromRequest string
	r.GET("/", func(c *gin.Context) {
		got = GetIPFromContext(c)
		fromRequest = GetIPFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "10.1.2.3", got)
	assert.Equal(t, "10.1.2.3", fromRequest)
}
