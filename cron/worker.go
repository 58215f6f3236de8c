package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "slotbook/database/repository/booking"
	"slotbook/models"
	"slotbook/services/booking"
	"slotbook/services/tasks"
	"slotbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of the asynq client the sweep uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ClaimedDays lists day records holding booked slots.
type ClaimedDays interface {
	ListClaimedDays(ctx context.Context, from, to time.Time) ([]models.Availability, error)
}

// BookedDays lists (provider, day) pairs with active bookings.
type BookedDays interface {
	ListActiveDays(ctx context.Context, from, to time.Time) ([]bookingRepo.DayKey, error)
}

// ReconcileWorker repairs availability drift in the background.
type ReconcileWorker struct {
	Service       booking.BookingService
	Claimed       ClaimedDays
	Booked        BookedDays
	Enqueuer      Enqueuer
	LookaheadDays int
	Logger        *zap.Logger
	Now           func() time.Time
}

// HandleReconcileTask reconciles the day named in the payload.
func (w *ReconcileWorker) HandleReconcileTask(ctx context.Context, t *asynq.Task) error {
	providerID, day, err := tasks.ParseReconcilePayload(t.Payload())
	if err != nil {
		w.Logger.Error("[ReconcileHandler] invalid payload", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	report, err := w.Service.Reconcile(ctx, providerID, day)
	if err != nil {
		w.Logger.Error("[ReconcileHandler] reconcile failed",
			zap.String("providerId", providerID), zap.Time("date", day), zap.Error(err))
		return err
	}
	if len(report.Conflicts) > 0 {
		w.Logger.Warn("[ReconcileHandler] unresolved conflicts",
			zap.String("providerId", providerID), zap.Strings("bookings", report.Conflicts))
	}
	return nil
}

// HandleSweepTask enqueues one reconcile task per day that has claims or active bookings.
func (w *ReconcileWorker) HandleSweepTask(ctx context.Context, _ *asynq.Task) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	from := utils.NormalizeDay(now())
	to := from.AddDate(0, 0, max(w.LookaheadDays, 1))

	type key struct {
		provider string
		day      time.Time
	}
	seen := make(map[key]bool)

	claimed, err := w.Claimed.ListClaimedDays(ctx, from, to)
	if err != nil {
		return err
	}
	for _, d := range claimed {
		seen[key{d.ProviderID, utils.NormalizeDay(d.Date)}] = true
	}
	booked, err := w.Booked.ListActiveDays(ctx, from, to)
	if err != nil {
		return err
	}
	for _, d := range booked {
		seen[key{d.ProviderID, utils.NormalizeDay(d.Date)}] = true
	}

	enqueued := 0
	for k := range seen {
		task, opts, err := tasks.NewReconcileTask(k.provider, k.day)
		if err != nil {
			return err
		}
		if _, err := w.Enqueuer.EnqueueContext(ctx, task, opts...); err != nil {
			if errors.Is(err, asynq.ErrDuplicateTask) {
				continue
			}
			return fmt.Errorf("failed to enqueue reconcile for %s: %w", k.provider, err)
		}
		enqueued++
	}
	w.Logger.Info("[ReconcileSweep] enqueued reconcile tasks", zap.Int("days", len(seen)), zap.Int("enqueued", enqueued))
	return nil
}

// InitReconcileWorker starts the asynq server and the periodic sweep scheduler.
// The returned function stops both.
func InitReconcileWorker(redisOpt asynq.RedisClientOpt, w *ReconcileWorker, cronSpec string) (func(), error) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconcileDay, w.HandleReconcileTask)
	mux.HandleFunc(tasks.TypeReconcileSweep, w.HandleSweepTask)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register(cronSpec, tasks.NewSweepTask(), asynq.Unique(time.Minute)); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", cronSpec, err)
	}

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start reconcile worker: %w", err)
	}
	w.Logger.Info("[ReconcileWorker] async worker started", zap.String("schedule", cronSpec))

	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("failed to start reconcile scheduler: %w", err)
	}

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}, nil
}
