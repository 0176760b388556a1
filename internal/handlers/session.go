package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/config"
	"github.com/vanthaita/Orca-CLI-sub000/internal/middleware"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *services.SessionService
	userService    *services.UserService
	config         *config.Config
}

func NewSessionHandler(
	ss *services.SessionService,
	us *services.UserService,
	cfg *config.Config,
) *SessionHandler {
	return &SessionHandler{sessionService: ss, userService: us, config: cfg}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /refresh.
// The refresh token comes from its cookie, or from the JSON body for clients without cookies.
func (h *SessionHandler) Refresh(c *gin.Context) {
	raw, _ := c.Cookie(middleware.RefreshTokenCookie)
	if raw == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			raw = req.RefreshToken
		}
	}

	tokens, err := h.sessionService.RotateRefreshToken(c.Request.Context(), raw)
	if err != nil {
		h.clearCookies(c)
		if errors.Is(err, services.ErrUnauthorized) {
			respondError(c, http.StatusUnauthorized, "unauthorized", "Refresh token is invalid or expired")
			return
		}
		log.Printf("[Session] refresh failed: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to refresh session")
		return
	}

	h.setCookies(c, tokens)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Logout handles POST /logout
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.sessionService.ClearSession(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		log.Printf("[Session] logout failed: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to log out")
		return
	}

	h.clearCookies(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me handles GET /me for both browser sessions and CLI tokens
func (h *SessionHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(c, http.StatusUnauthorized, "unauthorized", "User no longer exists")
			return
		}
		log.Printf("[Session] failed to load user: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.EmailOrEmpty(),
		"name":       user.Name,
		"picture":    user.Picture,
		"role":       user.Role,
		"authMethod": c.GetString(middleware.ContextAuthMethod),
	})
}

// CSRF handles GET /csrf
func (h *SessionHandler) CSRF(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrfToken": middleware.GetCSRFToken(c)})
}

// setCookies writes the access cookie site-wide and scopes the refresh
// cookie to the auth routes.
func (h *SessionHandler) setCookies(c *gin.Context, tokens *services.SessionTokens) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AccessTokenCookie,
		tokens.AccessToken,
		int(h.config.AccessTokenTTL/time.Second),
		"/",
		h.config.CookieDomain,
		h.config.IsProduction,
		true,
	)
	c.SetCookie(
		middleware.RefreshTokenCookie,
		tokens.RefreshToken.Token,
		int(h.config.RefreshTokenTTL/time.Second),
		h.config.CookiePath(),
		h.config.CookieDomain,
		h.config.IsProduction,
		true,
	)
}

func (h *SessionHandler) clearCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", h.config.CookieDomain, h.config.IsProduction, true)
	c.SetCookie(
		middleware.RefreshTokenCookie,
		"",
		-1,
		h.config.CookiePath(),
		h.config.CookieDomain,
		h.config.IsProduction,
		true,
	)
}
