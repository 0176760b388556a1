package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const ipContextKey ctxKey = "client_ip"

// IPMiddleware copies the client IP onto the request context so services
// that only receive c.Request.Context() can still attribute audit entries.
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP honours X-Forwarded-For from trusted proxies only
		c.Request = c.Request.WithContext(SetIPContext(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}

// SetIPContext returns a copy of ctx carrying ip. Empty values are ignored.
func SetIPContext(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, ipContextKey, ip)
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	// Try to extract from Gin context first
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.ClientIP()
	}

	if ip, ok := ctx.Value(ipContextKey).(string); ok {
		return ip
	}

	return ""
}
