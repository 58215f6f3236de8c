// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"
	"errors"
	"time"

	"slotbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotUnavailable is returned when a conditional claim matched no day record:
// at least one requested slot is held by another booking.
var ErrSlotUnavailable = errors.New("one or more slots are no longer available")

// AvailabilityRepository is the per-(provider, day) slot cache.
type AvailabilityRepository interface {
	// EnsureDay creates the day record with the canonical schedule if it does not exist yet.
	EnsureDay(ctx context.Context, providerID string, day time.Time) error
	// GetDay returns the day record, or nil when none exists.
	GetDay(ctx context.Context, providerID string, day time.Time) (*models.Availability, error)
	// ClaimSlots marks every label as booked by bookingID in one atomic write, or none of them.
	ClaimSlots(ctx context.Context, providerID string, day time.Time, labels []string, bookingID string) error
	// ReleaseSlots frees the labels still bound to bookingID. Labels owned by another booking are untouched.
	ReleaseSlots(ctx context.Context, providerID string, day time.Time, labels []string, bookingID string) error
	// ClearStaleClaim frees label only if it is still bound to staleBookingID.
	ClearStaleClaim(ctx context.Context, providerID string, day time.Time, label, staleBookingID string) (bool, error)
	// ListClaimedDays returns records in [from, to) that hold at least one booked slot.
	ListClaimedDays(ctx context.Context, from, to time.Time) ([]models.Availability, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo(db *mongo.Database) AvailabilityRepository {
	return &mongoAvailabilityRepo{
		coll: db.Collection("availability"),
	}
}
