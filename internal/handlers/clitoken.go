package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/middleware"
	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type CliTokenHandler struct {
	cliTokenService *services.CliTokenService
}

func NewCliTokenHandler(cts *services.CliTokenService) *CliTokenHandler {
	return &CliTokenHandler{cliTokenService: cts}
}

// cliTokenView is the listing shape. The hash and fingerprint stay server side.
type cliTokenView struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	DeviceName    string     `json:"deviceName"`
	OriginAddress string     `json:"originAddress"`
	UserAgent     string     `json:"userAgent,omitempty"`
	LastUsedAt    *time.Time `json:"lastUsedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	RevokedAt     *time.Time `json:"revokedAt"`
}

func newCliTokenView(t models.CliToken) cliTokenView {
	return cliTokenView{
		ID:            t.ID,
		Label:         t.Label,
		DeviceName:    t.DeviceName,
		OriginAddress: t.OriginAddress,
		UserAgent:     t.UserAgent,
		LastUsedAt:    t.LastUsedAt,
		CreatedAt:     t.CreatedAt,
		ExpiresAt:     t.ExpiresAt,
		RevokedAt:     t.RevokedAt,
	}
}

type renameRequest struct {
	Name string `json:"name"`
}

// List handles GET /cli/tokens
func (h *CliTokenHandler) List(c *gin.Context) {
	tokens, err := h.cliTokenService.ListCliTokens(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		log.Printf("[CliToken] list failed: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to list CLI tokens")
		return
	}

	views := make([]cliTokenView, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, newCliTokenView(t))
	}
	c.JSON(http.StatusOK, gin.H{"tokens": views})
}

// Revoke handles POST /cli/tokens/:id/revoke
func (h *CliTokenHandler) Revoke(c *gin.Context) {
	err := h.cliTokenService.RevokeCliToken(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.respondMutationError(c, "revoke", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Rename handles POST /cli/tokens/:id/rename
func (h *CliTokenHandler) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	err := h.cliTokenService.RenameCliToken(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.Param("id"),
		req.Name,
	)
	if err != nil {
		h.respondMutationError(c, "rename", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *CliTokenHandler) respondMutationError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, services.ErrCliTokenNotFound):
		respondError(c, http.StatusNotFound, "not_found", "CLI token not found")
	case errors.Is(err, services.ErrInvalidLabel):
		respondError(c, http.StatusBadRequest, "invalid_request", "name must not be empty or too long")
	default:
		log.Printf("[CliToken] %s failed: %v", action, err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to update CLI token")
	}
}
