package notification

import (
	"context"
	"encoding/json"
	"time"

	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

const emitTimeout = 5 * time.Second

// Emitter turns booking events into payloads for a Publisher.
// Delivery is best effort: failures are logged and never returned to the caller.
type Emitter struct {
	Publisher Publisher
	Logger    *zap.Logger
	Metrics   *utils.Metrics
	Now       func() time.Time
}

func NewEmitter(publisher Publisher, logger *zap.Logger, metrics *utils.Metrics) *Emitter {
	return &Emitter{
		Publisher: publisher,
		Logger:    logger,
		Metrics:   metrics,
		Now:       time.Now,
	}
}

// Emit publishes one event to receiverID. A cancelled request context does not
// abort the publish, since the change it reports is already durable.
func (e *Emitter) Emit(ctx context.Context, receiverID string, kind models.NotificationType, text string, booking *models.Booking) {
	if e == nil || e.Publisher == nil || receiverID == "" {
		return
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	event := models.Notification{
		Text:      text,
		Type:      kind,
		Booking:   booking,
		CreatedAt: now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger().Error("[Emit] failed to encode notification", zap.String("type", string(kind)), zap.Error(err))
		e.Metrics.ObserveNotification(string(kind), "encode_error")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
	defer cancel()

	if err := e.Publisher.Publish(ctx, receiverID, payload); err != nil {
		e.logger().Warn("[Emit] notification delivery failed",
			zap.String("receiver", receiverID),
			zap.String("type", string(kind)),
			zap.Error(err))
		e.Metrics.ObserveNotification(string(kind), "failed")
		return
	}
	e.Metrics.ObserveNotification(string(kind), "delivered")
}

func (e *Emitter) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return utils.GetLogger()
}
