package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"slotbook/models"
	"slotbook/utils"

	"github.com/hibiken/asynq"
)

const (
	TypeReconcileDay   = "availability:reconcile"
	TypeReconcileSweep = "availability:sweep"
)

// NewReconcileTask builds the task that rebuilds one provider day.
// Duplicates enqueued within the uniqueness window are dropped by the queue.
func NewReconcileTask(providerID string, day time.Time) (*asynq.Task, []asynq.Option, error) {
	payload := models.ReconcilePayload{
		ProviderID: providerID,
		Date:       utils.NormalizeDay(day).Format(utils.DateLayout),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileDay, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Unique(10 * time.Minute),
	}
	return task, opts, nil
}

// ParseReconcilePayload decodes a reconcile task payload.
func ParseReconcilePayload(raw []byte) (string, time.Time, error) {
	var p models.ReconcilePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", time.Time{}, fmt.Errorf("invalid reconcile payload: %w", err)
	}
	if p.ProviderID == "" {
		return "", time.Time{}, fmt.Errorf("invalid reconcile payload: missing providerId")
	}
	day, err := utils.ParseBookingDate(p.Date)
	if err != nil {
		return "", time.Time{}, err
	}
	return p.ProviderID, day, nil
}

// NewSweepTask builds the periodic task that fans out per-day reconciles.
func NewSweepTask() *asynq.Task {
	return asynq.NewTask(TypeReconcileSweep, nil)
}
