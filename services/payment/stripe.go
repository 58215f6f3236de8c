package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"slotbook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

const eventCheckoutCompleted = "checkout.session.completed"

// ErrInvalidSignature is returned for webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// StripeService creates checkout sessions and verifies completion webhooks.
// stripe.Key must be set before sessions are created.
type StripeService struct {
	WebhookSecret string

	newSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewStripeService(webhookSecret string) *StripeService {
	return &StripeService{WebhookSecret: webhookSecret, newSession: session.New}
}

// CreateCheckoutSession opens a one-off payment for the booking.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid checkout amount %.2f", req.Amount)
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(toMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("bookingId", req.BookingID)
	params.AddMetadata("userId", req.UserID)

	sess, err := s.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}
	return &models.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the checkout outcome.
// Events other than checkout.session.completed are returned with an empty SessionID.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &models.PaymentEvent{Type: string(event.Type)}
	if out.Type != eventCheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("stripe: invalid checkout session payload: %w", err)
	}
	out.SessionID = sess.ID
	out.BookingID = sess.ClientReferenceID
	if out.BookingID == "" {
		out.BookingID = sess.Metadata["bookingId"]
	}
	out.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	return out, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
