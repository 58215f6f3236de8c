package models

import "time"

// NotificationType names a booking lifecycle event.
type NotificationType string

const (
	NotificationBookingCreated  NotificationType = "booking_created"
	NotificationBookingRemoved  NotificationType = "booking_removed"
	NotificationBookingUpdated  NotificationType = "booking_status_updated"
	NotificationPaymentComplete NotificationType = "payment_completed"
)

// Notification is the event handed to the real-time delivery channel.
type Notification struct {
	Text      string           `json:"text"`
	Type      NotificationType `json:"type"`
	Booking   *Booking         `json:"booking"`
	CreatedAt time.Time        `json:"createdAt"`
}
