package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/vanthaita/Orca-CLI-sub000/internal/middleware"
	"github.com/vanthaita/Orca-CLI-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	deviceService *services.DeviceService
}

func NewDeviceHandler(ds *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: ds}
}

type pollRequest struct {
	DeviceCode        string `json:"deviceCode"`
	DeviceName        string `json:"deviceName"`
	DeviceFingerprint string `json:"deviceFingerprint"`
}

type verifyRequest struct {
	UserCode string `json:"userCode"`
}

// Start handles GET|POST /cli/start.
// Called by the CLI to open a device flow; the client IP is the rate limit key.
func (h *DeviceHandler) Start(c *gin.Context) {
	result, err := h.deviceService.StartDeviceAuth(c.Request.Context(), c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrRateLimitExceeded) {
			respondError(c, http.StatusTooManyRequests, "rate_limit_exceeded",
				"Too many login attempts from this address. Please try again later.")
			return
		}
		log.Printf("[DeviceAuth] start failed: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to start device authorization")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"deviceCode":      result.DeviceCode,
		"userCode":        result.UserCode,
		"verificationUrl": result.VerificationURL,
		"expiresIn":       result.ExpiresIn,
		"interval":        result.Interval,
	})
}

// Poll handles POST /cli/poll.
// Every outcome of the state machine is a 200; the status field tells the CLI what to do next.
func (h *DeviceHandler) Poll(c *gin.Context) {
	var req pollRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DeviceCode) == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "deviceCode is required")
		return
	}

	result, err := h.deviceService.PollDeviceAuth(c.Request.Context(), services.PollRequest{
		DeviceCode:        strings.TrimSpace(req.DeviceCode),
		DeviceName:        req.DeviceName,
		DeviceFingerprint: req.DeviceFingerprint,
		OriginAddress:     c.ClientIP(),
		UserAgent:         c.Request.UserAgent(),
	})
	if err != nil {
		log.Printf("[DeviceAuth] poll failed: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to poll device authorization")
		return
	}

	c.Header("Cache-Control", "no-store")
	switch result.Status {
	case services.PollOK:
		c.JSON(http.StatusOK, gin.H{
			"status":      result.Status,
			"accessToken": result.AccessToken,
			"expiresIn":   result.ExpiresIn,
		})
	case services.PollExpired:
		c.JSON(http.StatusOK, gin.H{"status": result.Status})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":   result.Status,
			"interval": result.Interval,
		})
	}
}

// Verify handles POST /cli/verify.
// The signed-in browser user approves the CLI login shown with userCode.
func (h *DeviceHandler) Verify(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Sign in to approve a CLI login")
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserCode) == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "userCode is required")
		return
	}

	err := h.deviceService.ApproveDeviceAuth(c.Request.Context(), userID, req.UserCode)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredCode) {
			respondError(c, http.StatusUnauthorized, "invalid_or_expired_code",
				"The code is invalid or has expired. Start a new login from the CLI.")
			return
		}
		log.Printf("[DeviceAuth] approval failed: %v", err)
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to approve device")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func respondError(c *gin.Context, status int, code, description string) {
	c.JSON(status, gin.H{
		"error":             code,
		"error_description": description,
	})
}
