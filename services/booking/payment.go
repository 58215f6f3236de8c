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

// StartPayment opens a checkout session for an unpaid booking and records its id.
func (s *DefaultBookingService) StartPayment(ctx context.Context, actor models.Actor, bookingID string) (*models.PaymentSessionResponse, error) {
	if s.Checkout == nil {
		return nil, NewUpstreamError(errors.New("checkout not configured"), "payments are not available")
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanPay(actor, b) {
		return nil, NewAuthorizationError("not allowed to pay for booking %s", bookingID)
	}
	if b.Status == models.BookingCancelled {
		return nil, NewConflictError("booking %s is cancelled", bookingID)
	}
	if b.PaymentStatus != models.PaymentPending {
		return nil, NewConflictError("booking %s is already %s", bookingID, b.PaymentStatus)
	}

	svc, err := s.Catalog.GetByID(ctx, b.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}

	session, err := s.Checkout.CreateCheckoutSession(ctx, models.CheckoutRequest{
		BookingID:   b.ID,
		UserID:      b.UserID,
		Amount:      svc.Price * float64(len(b.TimeSlots)),
		Currency:    s.CheckoutCurrency,
		Description: fmt.Sprintf("%s on %s at %s", svc.Name, b.BookingDate.Format(utils.DateLayout), strings.Join(b.TimeSlots, ", ")),
		SuccessURL:  s.CheckoutSuccessURL,
		CancelURL:   s.CheckoutCancelURL,
	})
	if err != nil {
		return nil, NewUpstreamError(err, "could not create payment session")
	}

	if err := s.Bookings.SetPaymentSession(ctx, b.ID, session.SessionID); err != nil {
		return nil, fmt.Errorf("failed to attach payment session: %w", err)
	}
	s.logger().Info("[StartPayment] checkout session created",
		zap.String("bookingId", b.ID), zap.String("sessionId", session.SessionID))

	return &models.PaymentSessionResponse{BookingID: b.ID, SessionID: session.SessionID, URL: session.URL}, nil
}

// completeAttempts bounds how often CompletePayment re-reads a booking that changed under it.
const completeAttempts = 3

// CompletePayment marks the booking behind sessionID as paid and completed.
// Repeated signals for the same session are accepted without further changes.
func (s *DefaultBookingService) CompletePayment(ctx context.Context, sessionID string) (*models.Booking, error) {
	for attempt := 1; ; attempt++ {
		b, err := s.Bookings.GetByPaymentSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil, NewNotFoundError("no booking for payment session %s", sessionID)
			}
			return nil, fmt.Errorf("failed to load booking: %w", err)
		}

		switch {
		case b.Status == models.BookingCancelled:
			return nil, NewConflictError("booking %s is cancelled", b.ID)
		case b.PaymentStatus == models.PaymentRefunded:
			return nil, NewConflictError("booking %s was refunded", b.ID)
		case b.PaymentStatus == models.PaymentPaid && b.Status == models.BookingCompleted:
			return b, nil
		}

		updated, err := s.Bookings.CompareAndSetStatus(ctx, b.ID, b.State(),
			models.BookingState{Status: models.BookingCompleted, PaymentStatus: models.PaymentPaid})
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			if attempt < completeAttempts {
				continue
			}
			return nil, NewConflictError("booking %s changed concurrently", b.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to complete payment: %w", err)
		}

		s.logger().Info("[CompletePayment] booking paid", zap.String("bookingId", b.ID), zap.String("sessionId", sessionID))
		s.emit(ctx, updated.UserID, models.NotificationPaymentComplete, "Your payment was received", updated)
		s.emit(ctx, updated.ProviderID, models.NotificationPaymentComplete, "A booking was paid", updated)
		return updated, nil
	}
}
