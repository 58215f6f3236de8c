package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityRepo "slotbook/database/repository/availability"
	userRepo "slotbook/database/repository/user"
	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// IsSlotFree answers from the booking records, not from the cached day flags.
func (s *DefaultBookingService) IsSlotFree(ctx context.Context, providerID string, day time.Time, label string) (bool, error) {
	holder, err := s.Bookings.FindActiveBySlot(ctx, providerID, utils.NormalizeDay(day), label)
	if err != nil {
		return false, fmt.Errorf("failed to check slot %s: %w", label, err)
	}
	return holder == nil, nil
}

// GetAvailableSlots returns the nine slots of the day with their status.
// A slot is reported Booked when either an active booking or the day record holds it.
func (s *DefaultBookingService) GetAvailableSlots(ctx context.Context, providerID string, day time.Time) ([]models.SlotAvailability, error) {
	day = utils.NormalizeDay(day)
	var generation string
	if s.Cache != nil {
		cached, gen, ok := s.Cache.Get(ctx, providerID, day)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	provider, err := s.Users.GetByID(ctx, providerID)
	if err != nil && !errors.Is(err, userRepo.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if !IsBookableProvider(provider) {
		return nil, NewNotFoundError("provider %s not found", providerID)
	}

	active, err := s.Bookings.ListActiveByDay(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	avail, err := s.Availability.GetDay(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read availability: %w", err)
	}

	booked := make(map[string]bool)
	for _, b := range active {
		for _, l := range b.TimeSlots {
			booked[l] = true
		}
	}
	if avail != nil {
		for _, slot := range avail.TimeSlots {
			if slot.IsBooked {
				booked[slot.StartTime] = true
			}
		}
	}

	slots := make([]models.SlotAvailability, 0, len(models.CanonicalSlots))
	for _, def := range models.CanonicalSlots {
		status := models.SlotAvailable
		if booked[def.StartTime] {
			status = models.SlotBooked
		}
		slots = append(slots, models.SlotAvailability{StartTime: def.StartTime, EndTime: def.EndTime, Status: status})
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, providerID, day, generation, slots)
	}
	return slots, nil
}

// ReconcileReport summarizes the repairs made to one day record.
type ReconcileReport struct {
	ProviderID string    `json:"providerId"`
	Date       time.Time `json:"date"`
	Cleared    []string  `json:"cleared"`
	Claimed    []string  `json:"claimed"`
	Conflicts  []string  `json:"conflicts,omitempty"`
}

// Reconcile rebuilds the day record's flags from the booking records. It writes
// only through ClearStaleClaim and ClaimSlots, so it is safe to run alongside allocations.
func (s *DefaultBookingService) Reconcile(ctx context.Context, providerID string, day time.Time) (*ReconcileReport, error) {
	day = utils.NormalizeDay(day)
	report := &ReconcileReport{ProviderID: providerID, Date: day}

	active, err := s.Bookings.ListActiveByDay(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if len(active) > 0 {
		if err := s.Availability.EnsureDay(ctx, providerID, day); err != nil {
			return nil, fmt.Errorf("failed to initialize availability: %w", err)
		}
	}
	avail, err := s.Availability.GetDay(ctx, providerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read availability: %w", err)
	}
	if avail == nil {
		return report, nil
	}

	for _, slot := range avail.TimeSlots {
		if !slot.IsBooked || slot.BookingRef == nil {
			continue
		}
		cleared, err := s.clearIfStale(ctx, providerID, day, slot.StartTime, *slot.BookingRef)
		if err != nil {
			return nil, err
		}
		if cleared {
			report.Cleared = append(report.Cleared, slot.StartTime)
		}
	}

	for i := range active {
		b := &active[i]
		var missing []string
		for _, label := range b.TimeSlots {
			slot := avail.Slot(label)
			if slot == nil || slot.BookingRef == nil || *slot.BookingRef != b.ID {
				missing = append(missing, label)
			}
		}
		if len(missing) == 0 {
			continue
		}
		err := s.Availability.ClaimSlots(ctx, providerID, day, missing, b.ID)
		if errors.Is(err, availabilityRepo.ErrSlotUnavailable) {
			s.logger().Error("[Reconcile] slots held by another booking",
				zap.String("bookingId", b.ID), zap.Strings("slots", missing))
			report.Conflicts = append(report.Conflicts, b.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Claimed = append(report.Claimed, missing...)
	}

	if len(report.Cleared) > 0 || len(report.Claimed) > 0 {
		s.invalidate(ctx, providerID, day)
		s.logger().Info("[Reconcile] repaired availability",
			zap.String("providerId", providerID),
			zap.String("date", day.Format(utils.DateLayout)),
			zap.Strings("cleared", report.Cleared),
			zap.Strings("claimed", report.Claimed))
	}
	return report, nil
}
