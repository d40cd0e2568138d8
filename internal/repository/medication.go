package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// ErrMedicationNotFound is returned when a medication does not exist for the user.
var ErrMedicationNotFound = errors.New("medication not found")

const medicationColumns = `m.id, m.user_id, m.name, m.dosage, m.frequency, m.times, m.start_date, m.end_date,
	m.notes, m.active, m.created_at, m.updated_at`

// ListMedications returns the user's medications with dose counters,
// ordered by their first dose time.
func (r *Repository) ListMedications(ctx context.Context, userID string) ([]*model.Medication, error) {
	query := `
		SELECT ` + medicationColumns + `,
		       COUNT(t.id) FILTER (WHERE t.taken),
		       COUNT(t.id)
		FROM medications m
		LEFT JOIN medication_tracking t ON t.medication_id = m.id
		WHERE m.user_id = $1
		GROUP BY m.id
		ORDER BY m.times[1] ASC NULLS LAST, m.name ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Medication, 0)
	for rows.Next() {
		var m model.Medication
		if err := rows.Scan(append(medicationDest(&m), &m.DosesTaken, &m.TotalDoses)...); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medications: %w", err)
	}
	return out, nil
}

// GetMedication returns one of the user's medications.
func (r *Repository) GetMedication(ctx context.Context, userID, id string) (*model.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications m WHERE m.id = $1 AND m.user_id = $2`

	var m model.Medication
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(medicationDest(&m)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &m, nil
}

// CreateMedication inserts a medication.
func (r *Repository) CreateMedication(ctx context.Context, m *model.Medication) error {
	query := `
		INSERT INTO medications (id, user_id, name, dosage, frequency, times, start_date, end_date, notes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		m.ID,
		m.UserID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.Times,
		m.StartDate,
		m.EndDate,
		m.Notes,
		m.Active,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

// UpdateMedication writes every editable field of the medication.
func (r *Repository) UpdateMedication(ctx context.Context, m *model.Medication) (*model.Medication, error) {
	query := `
		UPDATE medications m
		SET name = $3, dosage = $4, frequency = $5, times = $6, start_date = $7,
		    end_date = $8, notes = $9, active = $10, updated_at = NOW()
		WHERE m.id = $1 AND m.user_id = $2
		RETURNING ` + medicationColumns

	var out model.Medication
	err := r.db.QueryRow(ctx, query,
		m.ID,
		m.UserID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.Times,
		m.StartDate,
		m.EndDate,
		m.Notes,
		m.Active,
	).Scan(medicationDest(&out)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	return &out, nil
}

// ReplaceReminders swaps the reminder rows of a medication for one per time.
func (r *Repository) ReplaceReminders(ctx context.Context, userID, medicationID string, times []string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM medication_reminders WHERE medication_id = $1`, medicationID); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}

	if len(times) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range times {
		batch.Queue(
			`INSERT INTO medication_reminders (id, medication_id, user_id, reminder_time) VALUES ($1, $2, $3, $4)`,
			NewID(), medicationID, userID, t,
		)
	}
	if err := r.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert reminders: %w", err)
	}
	return nil
}

func (r *Repository) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	type batcher interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	}
	b, ok := r.db.(batcher)
	if !ok {
		return errors.New("querier does not support batches")
	}
	return b.SendBatch(ctx, batch).Close()
}

// DeleteMedication removes a medication and everything hanging off it,
// including reminder emails still waiting in the queue.
func (r *Repository) DeleteMedication(ctx context.Context, userID, id string) (*model.Medication, error) {
	var deleted *model.Medication
	err := r.WithTx(ctx, func(tx *Repository) error {
		m, err := tx.GetMedication(ctx, userID, id)
		if err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM medication_reminders WHERE medication_id = $1`,
			`DELETE FROM medication_tracking WHERE medication_id = $1`,
			`DELETE FROM notification_deliveries WHERE medication_id = $1 AND status IN ('pending', 'failed')`,
			`DELETE FROM medications WHERE id = $1`,
		} {
			if _, err := tx.db.Exec(ctx, q, id); err != nil {
				return fmt.Errorf("failed to delete medication: %w", err)
			}
		}
		deleted = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// CreateTracking records whether a dose was taken.
func (r *Repository) CreateTracking(ctx context.Context, t *model.MedicationTracking) error {
	query := `
		INSERT INTO medication_tracking (id, user_id, medication_id, scheduled_time, taken, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, t.ID, t.UserID, t.MedicationID, t.ScheduledTime, t.Taken, t.TakenAt).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to track medication: %w", err)
	}
	return nil
}

// DoseCountsSince returns how many tracked doses were taken and how many
// were tracked in total since the given time.
func (r *Repository) DoseCountsSince(ctx context.Context, userID string, since time.Time) (taken, total int, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE taken), COUNT(*)
		FROM medication_tracking
		WHERE user_id = $1 AND created_at >= $2
	`
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&taken, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to count doses: %w", err)
	}
	return taken, total, nil
}

func medicationDest(m *model.Medication) []any {
	return []any{
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&m.Frequency,
		&m.Times,
		&m.StartDate,
		&m.EndDate,
		&m.Notes,
		&m.Active,
		&m.CreatedAt,
		&m.UpdatedAt,
	}
}
