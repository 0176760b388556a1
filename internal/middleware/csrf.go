package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/vanthaita/Orca-CLI-sub000/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenKey    = "csrf_token"
	csrfHeaderField = "X-CSRF-Token"
)

// CSRFMiddleware provides CSRF protection for cookie-authenticated mutations.
// The token lives in the session and must be echoed in the X-CSRF-Token header.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, _ := session.Get(csrfTokenKey).(string)
		if token == "" {
			var err error
			token, err = util.RandomURLToken(32)
			if err != nil {
				log.Printf("[CSRF] failed to generate token: %v", err)
				abortCSRF(c, http.StatusInternalServerError, "server_error", "Failed to create CSRF token")
				return
			}
			session.Set(csrfTokenKey, token)
			if err := session.Save(); err != nil {
				log.Printf("[CSRF] failed to save session: %v", err)
				abortCSRF(c, http.StatusInternalServerError, "server_error", "Failed to save CSRF token")
				return
			}
		}

		c.Set(csrfTokenKey, token)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
			// CLI bearer requests carry no ambient credentials
			if c.GetString(ContextAuthMethod) == AuthMethodCliToken {
				break
			}
			submitted := c.GetHeader(csrfHeaderField)
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				abortCSRF(c, http.StatusForbidden, "invalid_csrf_token",
					"CSRF token validation failed. Please refresh the page and try again.")
				return
			}
		}

		c.Next()
	}
}

// GetCSRFToken retrieves the CSRF token from the context
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}

func abortCSRF(c *gin.Context, status int, code, description string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":             code,
		"error_description": description,
	})
}
