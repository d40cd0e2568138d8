package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// complianceWindow is how far back dose tracking counts toward compliance.
const complianceWindow = 30 * 24 * time.Hour

// ReminderEnqueuer queues today's reminder emails for one medication.
type ReminderEnqueuer interface {
	EnqueueForMedication(ctx context.Context, medicationID string) (int, error)
}

// MedicationService manages medication schedules and dose tracking.
type MedicationService struct {
	store     MedicationStore
	reminders ReminderEnqueuer
	logger    *slog.Logger
	now       clock
}

// NewMedicationService creates a new MedicationService. reminders may be
// nil when the reminder pipeline is disabled.
func NewMedicationService(store MedicationStore, reminders ReminderEnqueuer, logger *slog.Logger) *MedicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MedicationService{store: store, reminders: reminders, logger: logger, now: utcNow}
}

// MedicationInput is a medication schedule as submitted by the client.
type MedicationInput struct {
	Name      string
	Dosage    string
	Frequency string
	Times     []string
	StartDate time.Time
	EndDate   *time.Time
	Notes     string
	Active    *bool
}

func (in *MedicationInput) toModel(userID string, now time.Time) (*model.Medication, error) {
	name, dosage := strings.TrimSpace(in.Name), strings.TrimSpace(in.Dosage)
	if name == "" || dosage == "" || len(in.Times) == 0 {
		return nil, ErrMissingFields
	}

	times := make([]string, 0, len(in.Times))
	for _, t := range in.Times {
		h, m, err := model.ParseDoseTime(strings.TrimSpace(t))
		if err != nil {
			return nil, ErrInvalidDoseTime
		}
		times = append(times, fmt.Sprintf("%02d:%02d", h, m))
	}

	start := in.StartDate
	if start.IsZero() {
		start = now
	}
	if in.EndDate != nil && in.EndDate.Before(start) {
		return nil, ErrInvalidInput
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return &model.Medication{
		UserID:    userID,
		Name:      name,
		Dosage:    dosage,
		Frequency: in.Frequency,
		Times:     times,
		StartDate: start,
		EndDate:   in.EndDate,
		Notes:     in.Notes,
		Active:    active,
	}, nil
}

// List returns the user's medications with dose counters.
func (s *MedicationService) List(ctx context.Context, userID string) ([]*model.Medication, error) {
	return s.store.ListMedications(ctx, userID)
}

// Add stores a medication and its reminders, then queues today's emails.
func (s *MedicationService) Add(ctx context.Context, userID string, in MedicationInput) (*model.Medication, error) {
	med, err := in.toModel(userID, s.now())
	if err != nil {
		return nil, err
	}
	med.ID = repository.NewID()

	err = s.store.InTx(ctx, func(tx MedicationStore) error {
		if err := tx.CreateMedication(ctx, med); err != nil {
			return err
		}
		return tx.ReplaceReminders(ctx, userID, med.ID, med.Times)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add medication: %w", err)
	}

	s.logger.Info("medication_added", "user_id", userID, "medication_id", med.ID)
	s.enqueue(ctx, med.ID)
	return med, nil
}

// Update rewrites a medication and replaces its reminders. An inactive
// medication keeps no reminders.
func (s *MedicationService) Update(ctx context.Context, userID, id string, in MedicationInput) (*model.Medication, error) {
	med, err := in.toModel(userID, s.now())
	if err != nil {
		return nil, err
	}
	med.ID = id

	var updated *model.Medication
	err = s.store.InTx(ctx, func(tx MedicationStore) error {
		out, err := tx.UpdateMedication(ctx, med)
		if err != nil {
			return err
		}
		times := out.Times
		if !out.Active {
			times = nil
		}
		if err := tx.ReplaceReminders(ctx, userID, id, times); err != nil {
			return err
		}
		updated = out
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}

	s.enqueue(ctx, id)
	return updated, nil
}

// Delete removes a medication with its reminders, tracking and queued emails.
func (s *MedicationService) Delete(ctx context.Context, userID, id string) (*model.Medication, error) {
	med, err := s.store.DeleteMedication(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}
	s.logger.Info("medication_deleted", "user_id", userID, "medication_id", id)
	return med, nil
}

// TrackInput records one scheduled dose.
type TrackInput struct {
	MedicationID  string
	ScheduledTime string
	Taken         bool
}

// Track records whether a dose was taken.
func (s *MedicationService) Track(ctx context.Context, userID string, in TrackInput) (*model.MedicationTracking, error) {
	if strings.TrimSpace(in.MedicationID) == "" || strings.TrimSpace(in.ScheduledTime) == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.store.GetMedication(ctx, userID, in.MedicationID); err != nil {
		if errors.Is(err, repository.ErrMedicationNotFound) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}

	t := &model.MedicationTracking{
		ID:            repository.NewID(),
		UserID:        userID,
		MedicationID:  in.MedicationID,
		ScheduledTime: in.ScheduledTime,
		Taken:         in.Taken,
	}
	if in.Taken {
		now := s.now()
		t.TakenAt = &now
	}
	if err := s.store.CreateTracking(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Compliance is the percentage of tracked doses taken over the last 30
// days, rounded to two decimals. No tracked doses is 0.
func (s *MedicationService) Compliance(ctx context.Context, userID string) (float64, error) {
	taken, total, err := s.store.DoseCountsSince(ctx, userID, s.now().Add(-complianceWindow))
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return math.Round(float64(taken)/float64(total)*10000) / 100, nil
}

func (s *MedicationService) enqueue(ctx context.Context, medicationID string) {
	if s.reminders == nil {
		return
	}
	n, err := s.reminders.EnqueueForMedication(ctx, medicationID)
	if err != nil {
		s.logger.Warn("reminder_enqueue_failed", "medication_id", medicationID, "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("reminder_enqueued", "medication_id", medicationID, "count", n)
	}
}
