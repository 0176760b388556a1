package middleware

import (
	"net/http"
	"strings"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	// AccessTokenCookie carries the short-lived session JWT
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie carries the rotating refresh secret
	RefreshTokenCookie = "refreshToken"

	// ContextUserID is the gin context key holding the authenticated user id
	ContextUserID = "user_id"
	// ContextAuthMethod records which credential authenticated the request
	ContextAuthMethod = "auth_method"

	AuthMethodSession      = "session"
	AuthMethodCliToken     = "cli_token"
	AuthMethodRefreshToken = "refresh_token"
)

// RequireSession authenticates a browser session using the access token
// cookie, falling back to an Authorization: Bearer JWT.
func RequireSession(validator core.AccessTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := sessionUser(c, validator); ok {
			setUser(c, userID, AuthMethodSession)
			c.Next()
			return
		}
		abortUnauthorized(c, "Session is missing or expired")
	}
}

// RequireSessionOrRefresh is RequireSession with a fallback to the refresh
// cookie, so a browser whose access token has lapsed can still sign out.
func RequireSessionOrRefresh(
	sessionValidator core.AccessTokenValidator,
	refreshValidator core.RefreshTokenValidator,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := sessionUser(c, sessionValidator); ok {
			setUser(c, userID, AuthMethodSession)
			c.Next()
			return
		}
		if raw, err := c.Cookie(RefreshTokenCookie); err == nil && raw != "" {
			userID, err := refreshValidator.ValidateRefreshToken(c.Request.Context(), raw)
			if err == nil && userID != "" {
				setUser(c, userID, AuthMethodRefreshToken)
				c.Next()
				return
			}
		}
		abortUnauthorized(c, "Session is missing or expired")
	}
}

// RequireCliToken authenticates a CLI request carrying a long-lived bearer token.
func RequireCliToken(validator core.CliTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := cliTokenUser(c, validator); ok {
			setUser(c, userID, AuthMethodCliToken)
			c.Next()
			return
		}
		abortUnauthorized(c, "CLI token is missing, revoked or expired")
	}
}

// RequireAnyAuth accepts either a browser session or a CLI bearer token.
// The session is tried first.
func RequireAnyAuth(
	sessionValidator core.AccessTokenValidator,
	cliValidator core.CliTokenValidator,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := sessionUser(c, sessionValidator); ok {
			setUser(c, userID, AuthMethodSession)
			c.Next()
			return
		}
		if userID, ok := cliTokenUser(c, cliValidator); ok {
			setUser(c, userID, AuthMethodCliToken)
			c.Next()
			return
		}
		abortUnauthorized(c, "Authentication required")
	}
}

// GetUserID returns the authenticated user id, or "" for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func sessionUser(c *gin.Context, validator core.AccessTokenValidator) (string, bool) {
	candidates := make([]string, 0, 2)
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		candidates = append(candidates, cookie)
	}
	if bearer := bearerToken(c); bearer != "" {
		candidates = append(candidates, bearer)
	}

	for _, tok := range candidates {
		userID, err := validator.ValidateAccessToken(c.Request.Context(), tok)
		if err == nil && userID != "" {
			return userID, true
		}
	}
	return "", false
}

func cliTokenUser(c *gin.Context, validator core.CliTokenValidator) (string, bool) {
	raw := bearerToken(c)
	if raw == "" {
		return "", false
	}
	userID, err := validator.ValidateCliToken(c.Request.Context(), raw)
	if err != nil || userID == "" {
		return "", false
	}
	return userID, true
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}

func setUser(c *gin.Context, userID, method string) {
	c.Set(ContextUserID, userID)
	c.Set(ContextAuthMethod, method)
	c.Request = c.Request.WithContext(models.WithUserID(c.Request.Context(), userID))
}

func abortUnauthorized(c *gin.Context, description string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":             "unauthorized",
		"error_description": description,
	})
}
