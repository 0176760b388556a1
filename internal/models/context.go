package models

import (
	"context"

	"github.com/gin-gonic/gin"
)

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserIDFromContext returns the authenticated user id, or "" when the
// request is anonymous. Both request contexts and *gin.Context are accepted.
func GetUserIDFromContext(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if id := ginCtx.GetString("user_id"); id != "" {
			return id
		}
		ctx = ginCtx.Request.Context()
	}
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
