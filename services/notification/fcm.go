package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"slotbook/models"

	"firebase.google.com/go/v4/messaging"
)

// MessageSender is the part of the FCM client the publisher uses.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenLookup resolves a user's device push token.
type TokenLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// FCMPublisher pushes events to the receiver's device.
type FCMPublisher struct {
	Client MessageSender
	Users  TokenLookup
}

func NewFCMPublisher(client MessageSender, users TokenLookup) *FCMPublisher {
	return &FCMPublisher{Client: client, Users: users}
}

var pushTitles = map[models.NotificationType]string{
	models.NotificationBookingCreated:  "New booking",
	models.NotificationBookingRemoved:  "Booking cancelled",
	models.NotificationBookingUpdated:  "Booking updated",
	models.NotificationPaymentComplete: "Payment received",
}

// Publish implements Publisher. Receivers without a token are skipped.
func (p *FCMPublisher) Publish(ctx context.Context, channelKey string, payload []byte) error {
	u, err := p.Users.GetByID(ctx, channelKey)
	if err != nil {
		return fmt.Errorf("FCMPublisher: could not find user %s: %w", channelKey, err)
	}
	if u.FCMToken == "" {
		return nil
	}

	var event models.Notification
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("FCMPublisher: invalid payload: %w", err)
	}

	data := map[string]string{
		"type": string(event.Type),
		"role": roleTag(u.Role),
	}
	if event.Booking != nil {
		data["bookingId"] = event.Booking.ID
	}

	title := pushTitles[event.Type]
	if title == "" {
		title = "Booking"
	}
	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  event.Text,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	if _, err := p.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("FCMPublisher: failed to send FCM message: %w", err)
	}
	return nil
}

func roleTag(r models.Role) string {
	if r == models.RoleServiceProvider {
		return "provider"
	}
	return "user"
}
