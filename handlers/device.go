package handlers

import (
	"context"
	"errors"
	"net/http"

	userRepo "slotbook/database/repository/user"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// TokenStore persists device push tokens.
type TokenStore interface {
	UpdateFCMToken(ctx context.Context, id, token string) error
}

type DeviceHandler struct {
	Users TokenStore
}

func NewDeviceHandler(users TokenStore) *DeviceHandler {
	return &DeviceHandler{Users: users}
}

type fcmTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterFCMToken handles PUT /api/users/me/fcm-token.
func (h *DeviceHandler) RegisterFCMToken(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req fcmTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid token request", err.Error())
		return
	}
	if err := h.Users.UpdateFCMToken(c.Request.Context(), actor.UserID, req.Token); err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			utils.JSONError(c, http.StatusNotFound, "User not found", "")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "Failed to store device token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token updated"})
}
