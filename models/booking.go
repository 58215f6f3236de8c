package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingAccepted  BookingStatus = "Accepted"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

// PaymentStatus is the payment axis of a booking, independent of BookingStatus.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

// Booking represents a reservation of one or more slots of a provider's day.
type Booking struct {
	ID               string        `bson:"id" json:"id"`                                                 // UUID
	UserID           string        `bson:"userId" json:"userId"`                                         // user who made the booking
	ProviderID       string        `bson:"providerId" json:"serviceProviderId"`                          // provider who was booked
	ServiceID        string        `bson:"serviceId" json:"serviceId"`                                   // booked service
	BookingDate      time.Time     `bson:"bookingDate" json:"bookingDate"`                               // 00:00 UTC of the booked day
	TimeSlots        []string      `bson:"timeSlot" json:"timeSlot"`                                     // slot labels reserved together
	Location         string        `bson:"location" json:"location"`                                     // address as typed by the user
	LocationGeo      *GeoPoint     `bson:"locationGeo,omitempty" json:"locationGeo,omitempty"`           // geocoded location
	ContactNumber    string        `bson:"contactNumber" json:"contactNumber"`                           //
	Images           []string      `bson:"images,omitempty" json:"images,omitempty"`                     // opaque image URLs
	Status           BookingStatus `bson:"status" json:"status"`                                         //
	PaymentStatus    PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`                           //
	PaymentSessionID string        `bson:"paymentSessionId,omitempty" json:"paymentSessionId,omitempty"` // external checkout session
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// BookingState is the pair of lifecycle axes a booking moves along.
type BookingState struct {
	Status        BookingStatus
	PaymentStatus PaymentStatus
}

// State returns the booking's current status and payment status.
func (b *Booking) State() BookingState {
	return BookingState{Status: b.Status, PaymentStatus: b.PaymentStatus}
}

// IsActive reports whether the booking still occupies its slots.
func (b *Booking) IsActive() bool {
	return b.Status != BookingCancelled
}

// HasSlot reports whether label is one of the booking's slots.
func (b *Booking) HasSlot(label string) bool {
	for _, s := range b.TimeSlots {
		if s == label {
			return true
		}
	}
	return false
}

// ActiveStatuses lists the statuses that keep a slot occupied.
var ActiveStatuses = []BookingStatus{BookingPending, BookingAccepted, BookingCompleted}
