package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/evansachie/lifeguard/internal/metrics"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

const (
	// DefaultSchedule runs the reminder sweep at midnight.
	DefaultSchedule = "0 0 * * *"
	// sweepLockName guards the sweep across API instances.
	sweepLockName = "reminder-sweep"
	sweepLockTTL  = 5 * time.Minute
)

// Locker acquires a short-lived distributed lock.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error)
}

// reminderStore is the subset of Queue the scheduler needs.
type reminderStore interface {
	ListReminderCandidates(ctx context.Context, day time.Time, medicationID string) ([]model.ReminderCandidate, error)
	Enqueue(ctx context.Context, d *model.ReminderDelivery) (bool, error)
	CancelPending(ctx context.Context, medicationID string) (int64, error)
}

// Scheduler enqueues the day's medication reminders.
type Scheduler struct {
	store   reminderStore
	locker  Locker
	logger  *slog.Logger
	metrics metrics.Recorder
	spec    string
	cron    *cron.Cron
	now     func() time.Time
}

// NewScheduler creates a scheduler. locker may be nil for single-instance use.
func NewScheduler(store reminderStore, locker Locker, spec string, logger *slog.Logger, recorder metrics.Recorder) *Scheduler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if spec == "" {
		spec = DefaultSchedule
	}
	return &Scheduler{
		store:   store,
		locker:  locker,
		logger:  logger.With("component", "notify.scheduler"),
		metrics: recorder,
		spec:    spec,
		now:     time.Now,
	}
}

// Start runs one sweep immediately and then on the cron schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("reminder_sweep_failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.spec, err)
	}
	s.cron = c

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("reminder_sweep_failed", "error", err)
	}

	c.Start()
	s.logger.Info("reminder_scheduler_started", "schedule", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("reminder_scheduler_stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep enqueues the remaining reminders for today for every active
// medication. It returns the number of new deliveries.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, sweepLockName, sweepLockTTL)
		if err != nil {
			s.logger.Warn("reminder_lock_failed", "error", err)
		} else if !ok {
			s.logger.Info("reminder_sweep_skipped", "reason", "locked")
			return 0, nil
		} else {
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn("reminder_lock_release_failed", "error", err)
				}
			}()
		}
	}

	return s.enqueue(ctx, "")
}

// EnqueueForMedication replaces today's pending reminders for one medication.
// It is called after a medication is created or edited.
func (s *Scheduler) EnqueueForMedication(ctx context.Context, medicationID string) (int, error) {
	if _, err := s.store.CancelPending(ctx, medicationID); err != nil {
		return 0, err
	}
	return s.enqueue(ctx, medicationID)
}

func (s *Scheduler) enqueue(ctx context.Context, medicationID string) (int, error) {
	now := s.now()
	candidates, err := s.store.ListReminderCandidates(ctx, now, medicationID)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, c := range candidates {
		for _, d := range PlanReminders(c, now) {
			created, err := s.store.Enqueue(ctx, d)
			if err != nil {
				return enqueued, err
			}
			if created {
				enqueued++
				s.logger.Debug("reminder_enqueued",
					"medication_id", d.MedicationID,
					"dose_time", d.DoseTime,
					"send_at", d.NextAttemptAt,
				)
			}
		}
	}

	s.metrics.IncReminderEnqueued(enqueued)
	s.logger.Info("reminder_sweep_completed",
		"candidates", len(candidates),
		"enqueued", enqueued,
		"medication_id", medicationID,
	)
	return enqueued, nil
}

// PlanReminders computes the deliveries still due today for one medication.
// Each dose is sent the preference lead time before it is scheduled. Doses
// whose send time has passed, or owners with email disabled, yield nothing.
func PlanReminders(c model.ReminderCandidate, now time.Time) []*model.ReminderDelivery {
	if !c.Preferences.EmailNotifications || c.Email == "" || !c.Medication.ActiveOn(now) {
		return nil
	}

	lead := time.Duration(c.Preferences.ReminderLeadTime) * time.Minute
	year, month, day := now.Date()

	var out []*model.ReminderDelivery
	for _, t := range c.Medication.Times {
		hour, minute, err := model.ParseDoseTime(t)
		if err != nil {
			continue
		}
		doseAt := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
		sendAt := doseAt.Add(-lead)
		if !sendAt.After(now) {
			continue
		}

		out = append(out, &model.ReminderDelivery{
			ID:             repository.NewID(),
			UserID:         c.Medication.UserID,
			MedicationID:   c.Medication.ID,
			Recipient:      c.Email,
			MedicationName: c.Medication.Name,
			Dosage:         c.Medication.Dosage,
			DoseTime:       t,
			Notes:          c.Medication.Notes,
			ScheduledFor:   doseAt,
			Status:         model.DeliveryStatusPending,
			MaxAttempts:    DefaultMaxAttempts,
			NextAttemptAt:  sendAt,
			CreatedAt:      now,
		})
	}
	return out
}
