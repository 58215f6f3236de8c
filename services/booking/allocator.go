package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	availabilityRepo "slotbook/database/repository/availability"
	bookingRepo "slotbook/database/repository/booking"
	catalogRepo "slotbook/database/repository/catalog"
	userRepo "slotbook/database/repository/user"
	"slotbook/models"
	"slotbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Allocate reserves req.SlotLabels of the provider's day for the actor.
// Either every slot is claimed for one new booking, or nothing is written.
func (s *DefaultBookingService) Allocate(ctx context.Context, actor models.Actor, req models.AllocationRequest) (*models.BookingResponse, error) {
	resp, err := s.allocate(ctx, actor, req)
	switch KindOf(err) {
	case "":
		if err != nil {
			s.Metrics.ObserveAllocation("error")
		} else {
			s.Metrics.ObserveAllocation("created")
		}
	case KindConflict:
		s.Metrics.ObserveAllocation("conflict")
	default:
		s.Metrics.ObserveAllocation("rejected")
	}
	return resp, err
}

func (s *DefaultBookingService) allocate(ctx context.Context, actor models.Actor, req models.AllocationRequest) (*models.BookingResponse, error) {
	log := s.logger().With(zap.String("providerId", req.ProviderID), zap.String("userId", actor.UserID))

	day := utils.NormalizeDay(req.Date)
	if utils.IsPastDay(day, s.now()) {
		return nil, NewValidationError("booking date %s is in the past", day.Format(utils.DateLayout))
	}

	labels, err := normalizeLabels(req.SlotLabels)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Location) == "" {
		return nil, NewValidationError("location is required")
	}
	if strings.TrimSpace(req.ContactNumber) == "" {
		return nil, NewValidationError("contact number is required")
	}

	provider, err := s.Users.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, NewNotFoundError("provider %s not found", req.ProviderID)
		}
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if !IsBookableProvider(provider) {
		return nil, NewValidationError("user %s is not a bookable provider", req.ProviderID)
	}

	svc, err := s.Catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, NewNotFoundError("service %s not found", req.ServiceID)
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}

	var geo *models.GeoPoint
	if s.Geocoder != nil {
		geo, err = s.Geocoder.Geocode(ctx, req.Location)
		if err != nil {
			return nil, NewUpstreamError(err, "could not resolve location %q", req.Location)
		}
	}

	if err := s.Availability.EnsureDay(ctx, req.ProviderID, day); err != nil {
		return nil, fmt.Errorf("failed to initialize availability: %w", err)
	}

	occupied, err := s.occupiedLabels(ctx, req.ProviderID, day, labels)
	if err != nil {
		return nil, err
	}
	if len(occupied) > 0 {
		return nil, slotConflict(occupied)
	}

	now := s.now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        actor.UserID,
		ProviderID:    req.ProviderID,
		ServiceID:     svc.ID,
		BookingDate:   day,
		TimeSlots:     labels,
		Location:      req.Location,
		LocationGeo:   geo,
		ContactNumber: req.ContactNumber,
		Images:        req.Images,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if s.Transactions == nil {
		return nil, errors.New("booking store has no transaction support configured")
	}

	// The booking and its claim commit together: a failed claim or a crash in
	// between leaves neither the booking nor any flag behind.
	err = s.Transactions.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Bookings.Create(txCtx, booking); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return s.Availability.ClaimSlots(txCtx, req.ProviderID, day, labels, booking.ID)
	})
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrSlotUnavailable) {
			log.Info("[Allocate] lost slot race", zap.Strings("slots", labels))
			return nil, slotConflict(labels)
		}
		return nil, fmt.Errorf("failed to claim slots: %w", err)
	}
	s.invalidate(ctx, req.ProviderID, day)

	log.Info("[Allocate] booking created", zap.String("bookingId", booking.ID), zap.Strings("slots", labels))
	s.emit(ctx, booking.ProviderID, models.NotificationBookingCreated,
		fmt.Sprintf("New booking for %s on %s at %s", svc.Name, day.Format(utils.DateLayout), strings.Join(labels, ", ")),
		booking)

	return &models.BookingResponse{Booking: booking, Service: svc.Summary()}, nil
}

// occupiedLabels returns the labels held by an active booking. Cached flags that
// point at a booking which is no longer active are cleared on the way.
func (s *DefaultBookingService) occupiedLabels(ctx context.Context, providerID string, day time.Time, labels []string) ([]string, error) {
	avail, err := s.Availability.GetDay(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read availability: %w", err)
	}

	var occupied []string
	for _, label := range labels {
		free, err := s.IsSlotFree(ctx, providerID, day, label)
		if err != nil {
			return nil, err
		}
		if !free {
			occupied = append(occupied, label)
			continue
		}
		if avail == nil {
			continue
		}
		if slot := avail.Slot(label); slot != nil && slot.IsBooked && slot.BookingRef != nil {
			if _, err := s.clearIfStale(ctx, providerID, day, label, *slot.BookingRef); err != nil {
				return nil, err
			}
		}
	}
	return occupied, nil
}

// clearIfStale frees label when ref no longer names an active booking.
func (s *DefaultBookingService) clearIfStale(ctx context.Context, providerID string, day time.Time, label, ref string) (bool, error) {
	holder, err := s.Bookings.GetByID(ctx, ref)
	if err == nil && holder.IsActive() && holder.HasSlot(label) {
		return false, nil
	}
	if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return false, fmt.Errorf("failed to load slot holder: %w", err)
	}
	cleared, err := s.Availability.ClearStaleClaim(ctx, providerID, day, label, ref)
	if err != nil {
		return false, err
	}
	if cleared {
		s.invalidate(ctx, providerID, day)
		s.logger().Warn("[Availability] cleared stale slot claim",
			zap.String("providerId", providerID),
			zap.String("date", day.Format(utils.DateLayout)),
			zap.String("slot", label),
			zap.String("staleRef", ref))
	}
	return cleared, nil
}

func slotConflict(labels []string) error {
	if len(labels) == 1 {
		return NewConflictError("slot %s is no longer available", labels[0])
	}
	return NewConflictError("slots %s are no longer available", strings.Join(labels, ", "))
}

// normalizeLabels validates the requested labels and returns them in schedule order.
func normalizeLabels(labels []string) ([]string, error) {
	if len(labels) == 0 {
		return nil, NewValidationError("at least one time slot is required")
	}
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if !models.IsCanonicalSlot(l) {
			return nil, NewValidationError("invalid time slot %q", l)
		}
		if seen[l] {
			return nil, NewValidationError("time slot %s requested more than once", l)
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Strings(out)
	return out, nil
}
