package handlers

import (
	"context"
	"net/http"
	"testing"

	userRepo "slotbook/database/repository/user"
	"slotbook/middleware"
	"slotbook/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type memTokens map[string]string

func (m memTokens) UpdateFCMToken(_ context.Context, id, token string) error {
	if _, ok := m[id]; !ok {
		return userRepo.ErrUserNotFound
	}
	m[id] = token
	return nil
}

func TestRegisterFCMToken(t *testing.T) {
	store := memTokens{"user-1": ""}
	r := setupRouter(t, &stubService{})
	r.PUT("/api/users/me/fcm-token", middleware.JWTAuthMiddleware(false), NewDeviceHandler(store).RegisterFCMToken)

	w := do(r, http.MethodPut, "/api/users/me/fcm-token", bearer(t, "user-1", models.RoleUser), gin.H{"token": "device-tok"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "device-tok", store["user-1"])

	w = do(r, http.MethodPut, "/api/users/me/fcm-token", bearer(t, "ghost", models.RoleUser), gin.H{"token": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/api/users/me/fcm-token", bearer(t, "user-1", models.RoleUser), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
