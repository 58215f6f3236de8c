package handlers

import (
	"errors"
	"io"
	"net/http"

	"slotbook/models"
	"slotbook/services/booking"
	"slotbook/services/payment"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

// WebhookParser verifies and decodes payment provider callbacks.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error)
}

// PaymentHandler serves checkout creation and the payment webhook.
type PaymentHandler struct {
	Service booking.BookingService
	Webhook WebhookParser
}

func NewPaymentHandler(svc booking.BookingService, parser WebhookParser) *PaymentHandler {
	return &PaymentHandler{Service: svc, Webhook: parser}
}

// CreatePaymentSession handles POST /api/bookings/:id/payment-session.
func (h *PaymentHandler) CreatePaymentSession(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	resp, err := h.Service.StartPayment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StripeWebhook handles POST /api/webhooks/stripe.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Could not read request body", err.Error())
		return
	}

	event, err := h.Webhook.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, payment.ErrInvalidSignature) {
			status = http.StatusUnprocessableEntity
		}
		utils.JSONError(c, status, "Invalid webhook", err.Error())
		return
	}

	if event.SessionID == "" || !event.Paid {
		// Acknowledge events we do not act on so the provider stops retrying.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, err := h.Service.CompletePayment(c.Request.Context(), event.SessionID); err != nil {
		kind := booking.KindOf(err)
		if kind == booking.KindNotFound || kind == booking.KindConflict {
			utils.GetLogger().Warn("[StripeWebhook] payment not applied",
				zap.String("sessionId", event.SessionID), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true, "applied": false})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "applied": true})
}
