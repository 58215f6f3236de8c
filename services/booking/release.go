package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "slotbook/database/repository/booking"
	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// Release cancels a Pending booking and frees every slot it held.
func (s *DefaultBookingService) Release(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.release(ctx, actor, bookingID)
	switch {
	case err == nil:
		s.Metrics.ObserveRelease("released")
	case KindOf(err) == "":
		s.Metrics.ObserveRelease("error")
	default:
		s.Metrics.ObserveRelease("rejected")
	}
	return b, err
}

func (s *DefaultBookingService) release(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanRelease(actor, b) {
		return nil, NewAuthorizationError("not allowed to cancel booking %s", bookingID)
	}
	if b.Status != models.BookingPending {
		return nil, NewConflictError("booking %s is %s and can no longer be cancelled", bookingID, b.Status)
	}

	cancelled, err := s.Bookings.CompareAndSetStatus(ctx, b.ID, b.State(),
		models.BookingState{Status: models.BookingCancelled, PaymentStatus: b.PaymentStatus})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			return nil, NewConflictError("booking %s changed while cancelling, please retry", bookingID)
		}
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	// The booking is inactive from here on, so a failure below leaves only
	// stale flags, which the next allocation or reconcile clears.
	if err := s.Availability.ReleaseSlots(ctx, b.ProviderID, b.BookingDate, b.TimeSlots, b.ID); err != nil {
		s.logger().Error("[Release] failed to free slots",
			zap.String("bookingId", b.ID), zap.Strings("slots", b.TimeSlots), zap.Error(err))
	}
	s.invalidate(ctx, b.ProviderID, b.BookingDate)

	when := fmt.Sprintf("%s at %s", b.BookingDate.Format(utils.DateLayout), strings.Join(b.TimeSlots, ", "))
	receiver, text := b.ProviderID, "Booking on "+when+" was cancelled by the customer"
	if actor.UserID != b.UserID {
		receiver, text = b.UserID, "Your booking on "+when+" was cancelled"
	}
	s.emit(ctx, receiver, models.NotificationBookingRemoved, text, cancelled)

	s.logger().Info("[Release] booking cancelled", zap.String("bookingId", b.ID), zap.String("actor", actor.UserID))
	return cancelled, nil
}

func (s *DefaultBookingService) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, NewNotFoundError("booking %s not found", bookingID)
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}
