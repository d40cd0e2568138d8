package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evansachie/lifeguard/internal/metrics"
	"github.com/evansachie/lifeguard/internal/model"
)

const (
	// DefaultBatchSize is the number of deliveries to process per poll.
	DefaultBatchSize = 50
	// DefaultPollInterval is the time between polling for due deliveries.
	DefaultPollInterval = 15 * time.Second
	// DefaultMetricsInterval is how often to update queue depth metrics.
	DefaultMetricsInterval = 30 * time.Second
	// sendTimeout bounds a single email send.
	sendTimeout = 20 * time.Second
)

// deliveryQueue is the subset of Queue the worker needs.
type deliveryQueue interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ReminderDelivery, error)
	MarkSent(ctx context.Context, id string, now time.Time) error
	MarkFailed(ctx context.Context, id string, errMsg string, now, nextAttemptAt time.Time, exhausted bool) error
	QueueDepth(ctx context.Context) (int64, error)
}

// Worker drains the reminder queue and sends medication reminder emails.
type Worker struct {
	queue           deliveryQueue
	mailer          Mailer
	renderer        *Renderer
	logger          *slog.Logger
	metrics         metrics.Recorder
	now             func() time.Time
	batchSize       int
	pollInterval    time.Duration
	metricsInterval time.Duration
	lastMetrics     time.Time
	started         bool
}

// NewWorker creates a reminder delivery worker.
func NewWorker(queue deliveryQueue, mailer Mailer, renderer *Renderer, logger *slog.Logger, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		queue:           queue,
		mailer:          mailer,
		renderer:        renderer,
		logger:          logger.With("component", "notify.worker"),
		metrics:         recorder,
		now:             time.Now,
		batchSize:       DefaultBatchSize,
		pollInterval:    DefaultPollInterval,
		metricsInterval: DefaultMetricsInterval,
	}
}

// Run starts the worker loop. Blocks until context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.started {
		return errors.New("worker already started")
	}
	w.started = true

	w.logger.Info("reminder_worker_started",
		"poll_interval", w.pollInterval.String(),
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder_worker_stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("reminder_batch_failed", "error", err)
			}
		}
	}
}

// ProcessOnce claims and sends one batch of due reminders. It returns the
// number of deliveries attempted.
func (w *Worker) ProcessOnce(ctx context.Context) (int, error) {
	start := w.now()
	defer func() { w.metrics.ObserveReminderBatchDuration(time.Since(start)) }()

	w.maybeUpdateQueueDepth(ctx)

	deliveries, err := w.queue.ClaimDue(ctx, start, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim due deliveries: %w", err)
	}

	for _, d := range deliveries {
		if err := w.deliver(ctx, d); err != nil {
			w.logger.Warn("reminder_update_failed",
				"delivery_id", d.ID,
				"error", err,
			)
		}
	}

	return len(deliveries), nil
}

// deliver sends a single reminder and records the outcome.
func (w *Worker) deliver(ctx context.Context, d *model.ReminderDelivery) error {
	msg, err := w.renderer.Reminder(d)
	if err != nil {
		return w.handleFailure(ctx, d, err.Error())
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err = w.mailer.Send(sendCtx, msg)
	cancel()
	if err != nil {
		return w.handleFailure(ctx, d, err.Error())
	}

	w.logger.Info("reminder_sent",
		"delivery_id", d.ID,
		"medication_id", d.MedicationID,
		"dose_time", d.DoseTime,
		"attempt", d.AttemptCount+1,
	)
	w.metrics.IncReminderDelivery(string(model.DeliveryStatusSent))
	return w.queue.MarkSent(ctx, d.ID, w.now())
}

// handleFailure schedules a retry or gives up after the last attempt.
func (w *Worker) handleFailure(ctx context.Context, d *model.ReminderDelivery, errMsg string) error {
	nextAttempt := d.AttemptCount + 1
	maxAttempts := d.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	exhausted := IsExhausted(nextAttempt, maxAttempts)

	status := model.DeliveryStatusFailed
	if exhausted {
		status = model.DeliveryStatusExhausted
	}

	w.logger.Warn("reminder_delivery_failed",
		"delivery_id", d.ID,
		"attempt", nextAttempt,
		"exhausted", exhausted,
		"error", errMsg,
	)
	w.metrics.IncReminderDelivery(string(status))

	now := w.now()
	return w.queue.MarkFailed(ctx, d.ID, errMsg, now, NextRetryAt(now, d.AttemptCount), exhausted)
}

// maybeUpdateQueueDepth periodically updates queue depth metric.
func (w *Worker) maybeUpdateQueueDepth(ctx context.Context) {
	if time.Since(w.lastMetrics) < w.metricsInterval {
		return
	}
	w.lastMetrics = time.Now()

	depth, err := w.queue.QueueDepth(ctx)
	if err != nil {
		w.logger.Warn("queue_depth_failed", "error", err)
		return
	}
	w.metrics.SetReminderQueueDepth(depth)
}

// SetBatchSize overrides the default batch size.
func (w *Worker) SetBatchSize(size int) {
	if size > 0 {
		w.batchSize = size
	}
}

// SetPollInterval overrides the default poll interval.
func (w *Worker) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		w.pollInterval = interval
	}
}
