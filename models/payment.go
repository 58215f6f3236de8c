package models

// --- CheckoutRequest & CheckoutSession ---
type CheckoutRequest struct {
	BookingID   string
	UserID      string
	Amount      float64 // major currency units
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

// PaymentEvent is a verified, provider-agnostic view of a payment webhook.
type PaymentEvent struct {
	Type      string
	SessionID string
	BookingID string
	Paid      bool
}
