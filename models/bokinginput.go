package models

import "time"

// CreateBookingRequest is the client payload for reserving slots.
type CreateBookingRequest struct {
	ServiceID         string   `json:"serviceId" binding:"required"`
	BookingDate       string   `json:"bookingDate" binding:"required"` // ISO date, "2006-01-02" or RFC3339
	Location          string   `json:"location" binding:"required"`
	ContactNumber     string   `json:"contactNumber" binding:"required"`
	ServiceProviderID string   `json:"serviceProviderId" binding:"required"`
	TimeSlot          []string `json:"timeSlot" binding:"required,min=1,dive,slotlabel"`
	Images            []string `json:"images,omitempty" binding:"omitempty,dive,url"`
}

// AllocationRequest is the validated input of the slot allocator.
type AllocationRequest struct {
	ProviderID    string
	ServiceID     string
	Date          time.Time
	SlotLabels    []string
	Location      string
	ContactNumber string
	Images        []string
}

// UpdateBookingStatusRequest is the administrative status/payment update payload.
type UpdateBookingStatusRequest struct {
	Status        *BookingStatus `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
}
