// models/booking_response.go
package models

// BookingResponse is returned after a booking is created or fetched.
type BookingResponse struct {
	Booking *Booking        `json:"booking"`
	Service *ServiceSummary `json:"service,omitempty"`
}

// ServiceSummary is the denormalized view of the booked service shown to clients.
type ServiceSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// PaymentSessionResponse is returned when a checkout session is opened for a booking.
type PaymentSessionResponse struct {
	BookingID string `json:"bookingId"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
