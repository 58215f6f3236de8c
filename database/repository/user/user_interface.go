package userRepo

import (
	"context"
	"errors"

	"slotbook/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// UpdateFCMToken stores the push token of a user's current device.
	UpdateFCMToken(ctx context.Context, id, token string) error
}
