package booking

import (
	"context"
	"time"

	availabilityRepo "slotbook/database/repository/availability"
	bookingRepo "slotbook/database/repository/booking"
	"slotbook/models"
	"slotbook/services/geocoding"
	"slotbook/utils"

	"go.uber.org/zap"
)

// BookingService is the booking core: slot allocation, release and lifecycle.
type BookingService interface {
	Allocate(ctx context.Context, actor models.Actor, req models.AllocationRequest) (*models.BookingResponse, error)
	Release(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingResponse, error)
	UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, req models.UpdateBookingStatusRequest) (*models.Booking, error)
	StartPayment(ctx context.Context, actor models.Actor, bookingID string) (*models.PaymentSessionResponse, error)
	CompletePayment(ctx context.Context, sessionID string) (*models.Booking, error)

	IsSlotFree(ctx context.Context, providerID string, day time.Time, label string) (bool, error)
	GetAvailableSlots(ctx context.Context, providerID string, day time.Time) ([]models.SlotAvailability, error)
	Reconcile(ctx context.Context, providerID string, day time.Time) (*ReconcileReport, error)
}

// UserLookup resolves users and providers.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ServiceLookup resolves catalog services.
type ServiceLookup interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}

// Notifier receives booking lifecycle events.
type Notifier interface {
	Emit(ctx context.Context, receiverID string, kind models.NotificationType, text string, booking *models.Booking)
}

// Checkout opens hosted payment sessions.
type Checkout interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
}

// Transactor runs fn in one database transaction. Writes made through the ctx
// handed to fn commit together or not at all.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityCache holds computed availability views. Implementations must be safe to miss.
// Get reports the day's generation on a miss; Set must discard the view when an
// Invalidate has happened since that generation was read.
type AvailabilityCache interface {
	Get(ctx context.Context, providerID string, day time.Time) (slots []models.SlotAvailability, generation string, ok bool)
	Set(ctx context.Context, providerID string, day time.Time, generation string, slots []models.SlotAvailability)
	Invalidate(ctx context.Context, providerID string, day time.Time)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings     bookingRepo.BookingRepository
	Availability availabilityRepo.AvailabilityRepository
	Users        UserLookup
	Catalog      ServiceLookup
	Transactions Transactor
	Geocoder     geocoding.Geocoder // optional
	Notifier     Notifier           // optional
	Checkout     Checkout           // optional
	Cache        AvailabilityCache  // optional
	Metrics      *utils.Metrics     // optional
	Logger       *zap.Logger

	// CheckoutSuccessURL and CheckoutCancelURL are passed to the payment provider.
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	CheckoutCurrency   string

	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

func (s *DefaultBookingService) emit(ctx context.Context, receiverID string, kind models.NotificationType, text string, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Emit(ctx, receiverID, kind, text, b)
}

func (s *DefaultBookingService) invalidate(ctx context.Context, providerID string, day time.Time) {
	if s.Cache == nil {
		return
	}
	s.Cache.Invalidate(ctx, providerID, day)
}
