package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/vanthaita/Orca-CLI-sub000/internal/middleware"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditHandler exposes a user's own security events
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListMine handles GET /audit: the newest events where the caller is the actor.
func (h *AuditHandler) ListMine(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if err != nil || limit < 1 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	logs, err := h.auditService.ListForUser(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		log.Printf("[Audit] list failed: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to retrieve audit logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
