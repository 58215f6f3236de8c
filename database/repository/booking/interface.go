package bookingRepo

import (
	"context"
	"errors"
	"time"

	"slotbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrStatusConflict means the booking's status or payment status changed between read and write.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)

// BookingRepository is the authoritative store of bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentSession(ctx context.Context, sessionID string) (*models.Booking, error)
	// FindActiveBySlot returns the non-cancelled booking holding label on the day, or nil.
	FindActiveBySlot(ctx context.Context, providerID string, day time.Time, label string) (*models.Booking, error)
	// ListActiveByDay returns every non-cancelled booking of the provider on the day.
	ListActiveByDay(ctx context.Context, providerID string, day time.Time) ([]models.Booking, error)
	// ListActiveDays returns the distinct (provider, day) pairs with active bookings in [from, to).
	ListActiveDays(ctx context.Context, from, to time.Time) ([]DayKey, error)
	// CompareAndSetStatus writes next only while the stored status and payment status
	// both still equal expected. It returns ErrStatusConflict otherwise.
	CompareAndSetStatus(ctx context.Context, id string, expected, next models.BookingState) (*models.Booking, error)
	SetPaymentSession(ctx context.Context, id, sessionID string) error
	EnsureIndexes(ctx context.Context) error
}

// DayKey identifies one provider's calendar day.
type DayKey struct {
	ProviderID string    `bson:"providerId"`
	Date       time.Time `bson:"date"`
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a BookingRepository over the bookings collection.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}
