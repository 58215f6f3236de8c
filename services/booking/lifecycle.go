package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "slotbook/database/repository/booking"
	"slotbook/models"

	"go.uber.org/zap"
)

// Pending reaches Completed only through CompletePayment, and Cancelled only through Release.
var statusTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:  {models.BookingAccepted},
	models.BookingAccepted: {models.BookingCompleted},
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentPending: {models.PaymentPaid},
	models.PaymentPaid:    {models.PaymentRefunded},
}

// CanTransition reports whether status may move from -> to outside the release path.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether paymentStatus may move from -> to.
func CanTransitionPayment(from, to models.PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validStatus(s models.BookingStatus) bool {
	switch s {
	case models.BookingPending, models.BookingAccepted, models.BookingCompleted, models.BookingCancelled:
		return true
	}
	return false
}

func validPayment(p models.PaymentStatus) bool {
	switch p {
	case models.PaymentPending, models.PaymentPaid, models.PaymentRefunded:
		return true
	}
	return false
}

// nextState applies req to the booking's current state. Paying a Pending booking accepts it.
func nextState(b *models.Booking, req models.UpdateBookingStatusRequest) (models.BookingStatus, models.PaymentStatus, error) {
	status, payment := b.Status, b.PaymentStatus

	if req.Status != nil && *req.Status != b.Status {
		target := *req.Status
		if !validStatus(target) {
			return "", "", NewValidationError("unknown status %q", target)
		}
		if target == models.BookingCancelled {
			return "", "", NewValidationError("bookings are cancelled through the cancel endpoint")
		}
		if !CanTransition(b.Status, target) {
			return "", "", NewConflictError("cannot change status from %s to %s", b.Status, target)
		}
		status = target
	}

	if req.PaymentStatus != nil && *req.PaymentStatus != b.PaymentStatus {
		target := *req.PaymentStatus
		if !validPayment(target) {
			return "", "", NewValidationError("unknown payment status %q", target)
		}
		if !CanTransitionPayment(b.PaymentStatus, target) {
			return "", "", NewConflictError("cannot change payment status from %s to %s", b.PaymentStatus, target)
		}
		payment = target
	}

	if payment == models.PaymentPaid && status == models.BookingPending {
		status = models.BookingAccepted
	}
	return status, payment, nil
}

// UpdateStatus is the provider/admin override of status and paymentStatus.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, req models.UpdateBookingStatusRequest) (*models.Booking, error) {
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, NewValidationError("status or paymentStatus is required")
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanUpdateStatus(actor, b) {
		return nil, NewAuthorizationError("not allowed to update booking %s", bookingID)
	}
	if b.Status == models.BookingCancelled {
		return nil, NewConflictError("booking %s is cancelled and cannot be changed", bookingID)
	}

	status, payment, err := nextState(b, req)
	if err != nil {
		return nil, err
	}
	if status == b.Status && payment == b.PaymentStatus {
		return b, nil
	}

	updated, err := s.Bookings.CompareAndSetStatus(ctx, b.ID, b.State(),
		models.BookingState{Status: status, PaymentStatus: payment})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			return nil, NewConflictError("booking %s changed concurrently, please retry", bookingID)
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.logger().Info("[UpdateStatus] booking updated",
		zap.String("bookingId", b.ID),
		zap.String("status", string(updated.Status)),
		zap.String("paymentStatus", string(updated.PaymentStatus)),
		zap.String("actor", actor.UserID))
	s.emit(ctx, updated.UserID, models.NotificationBookingUpdated,
		fmt.Sprintf("Your booking is now %s (payment %s)", updated.Status, updated.PaymentStatus), updated)
	return updated, nil
}

// GetBooking returns a booking visible to the actor, with its service.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingResponse, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, b) {
		return nil, NewAuthorizationError("not allowed to view booking %s", bookingID)
	}

	resp := &models.BookingResponse{Booking: b}
	svc, err := s.Catalog.GetByID(ctx, b.ServiceID)
	if err != nil {
		s.logger().Warn("[GetBooking] service lookup failed", zap.String("serviceId", b.ServiceID), zap.Error(err))
		return resp, nil
	}
	resp.Service = svc.Summary()
	return resp, nil
}
