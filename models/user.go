// models/user.go
package models

import "time"

// User represents a platform account. Providers are users with a provider or admin role.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Role      Role      `bson:"role" json:"role"`
	FCMToken  string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}
