package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/evansachie/lifeguard/internal/model"
)

// ClaimLease is how long a claimed delivery stays invisible to other workers.
const ClaimLease = 5 * time.Minute

// maxErrorLength bounds the stored last_error text.
const maxErrorLength = 500

// Queue stores reminder deliveries in the notification_deliveries table.
type Queue struct {
	db *sql.DB
}

// NewQueue creates a queue over a database/sql handle opened with lib/pq.
func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue inserts a pending delivery. It reports false when a delivery for the
// same medication and dose time already exists.
func (q *Queue) Enqueue(ctx context.Context, d *model.ReminderDelivery) (bool, error) {
	query := `
		INSERT INTO notification_deliveries (
			id, user_id, medication_id, recipient, medication_name, dosage,
			dose_time, notes, scheduled_for, status, attempt_count, max_attempts,
			next_attempt_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', 0, $10, $11, $12, $12)
		ON CONFLICT (medication_id, scheduled_for) DO NOTHING
	`

	maxAttempts := d.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	result, err := q.db.ExecContext(ctx, query,
		d.ID,
		d.UserID,
		d.MedicationID,
		d.Recipient,
		d.MedicationName,
		d.Dosage,
		d.DoseTime,
		d.Notes,
		d.ScheduledFor,
		maxAttempts,
		d.NextAttemptAt,
		d.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert reminder delivery: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert reminder delivery: %w", err)
	}
	return rows == 1, nil
}

// ClaimDue leases up to limit deliveries whose next attempt is due. Claimed
// rows have next_attempt_at pushed forward by ClaimLease so a crashed worker
// releases them automatically.
func (q *Queue) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.ReminderDelivery, error) {
	query := `
		UPDATE notification_deliveries
		SET next_attempt_at = $3, updated_at = $1
		WHERE id IN (
			SELECT id
			FROM notification_deliveries
			WHERE status IN ('pending', 'failed')
			  AND next_attempt_at <= $1
			ORDER BY next_attempt_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, medication_id, recipient, medication_name, dosage,
			dose_time, notes, scheduled_for, status, attempt_count, max_attempts,
			next_attempt_at, last_attempt_at, last_error, created_at
	`

	rows, err := q.db.QueryContext(ctx, query, now, limit, now.Add(ClaimLease))
	if err != nil {
		return nil, fmt.Errorf("claim due deliveries: %w", err)
	}
	defer rows.Close()

	return scanDeliveries(rows)
}

// MarkSent records a successful delivery.
func (q *Queue) MarkSent(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE notification_deliveries
		SET status = 'sent',
			attempt_count = attempt_count + 1,
			last_attempt_at = $2,
			last_error = '',
			updated_at = $2
		WHERE id = $1
	`

	result, err := q.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("update delivery sent: %w", err)
	}
	return requireRow(result)
}

// MarkFailed records a failed attempt and schedules the next one, or marks the
// delivery exhausted.
func (q *Queue) MarkFailed(ctx context.Context, id string, errMsg string, now, nextAttemptAt time.Time, exhausted bool) error {
	status := model.DeliveryStatusFailed
	if exhausted {
		status = model.DeliveryStatusExhausted
	}
	if len(errMsg) > maxErrorLength {
		errMsg = errMsg[:maxErrorLength]
	}

	query := `
		UPDATE notification_deliveries
		SET status = $2,
			attempt_count = attempt_count + 1,
			last_attempt_at = $3,
			last_error = $4,
			next_attempt_at = $5,
			updated_at = $3
		WHERE id = $1
	`

	result, err := q.db.ExecContext(ctx, query, id, string(status), now, errMsg, nextAttemptAt)
	if err != nil {
		return fmt.Errorf("update delivery failure: %w", err)
	}
	return requireRow(result)
}

// CancelPending removes undelivered reminders for a medication.
func (q *Queue) CancelPending(ctx context.Context, medicationID string) (int64, error) {
	query := `
		DELETE FROM notification_deliveries
		WHERE medication_id = $1 AND status IN ('pending', 'failed')
	`

	result, err := q.db.ExecContext(ctx, query, medicationID)
	if err != nil {
		return 0, fmt.Errorf("cancel pending deliveries: %w", err)
	}
	return result.RowsAffected()
}

// QueueDepth returns the count of pending and failed deliveries.
func (q *Queue) QueueDepth(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM notification_deliveries
		WHERE status IN ('pending', 'failed')
	`

	var count int64
	if err := q.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count queue depth: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of deliveries in each status.
func (q *Queue) CountByStatus(ctx context.Context) (map[model.DeliveryStatus]int64, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM notification_deliveries GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count deliveries by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.DeliveryStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[model.DeliveryStatus(status)] = n
	}
	return counts, rows.Err()
}

// ListReminderCandidates returns active medications covering day whose owner
// has a known email address. An empty medicationID selects all medications.
func (q *Queue) ListReminderCandidates(ctx context.Context, day time.Time, medicationID string) ([]model.ReminderCandidate, error) {
	query := `
		SELECT m.id, m.user_id, m.name, m.dosage, m.frequency, m.times,
			   m.start_date, m.end_date, m.notes, m.active,
			   u.email,
			   COALESCE(np.email_notifications, true),
			   COALESCE(np.reminder_lead_time, 15)
		FROM medications m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN notification_preferences np ON np.user_id = m.user_id
		WHERE m.active = true
		  AND m.start_date <= $1
		  AND (m.end_date IS NULL OR m.end_date >= $1)
		  AND u.email <> ''
		  AND ($2 = '' OR m.id = $2)
		ORDER BY m.user_id, m.id
	`

	rows, err := q.db.QueryContext(ctx, query, day.Format("2006-01-02"), medicationID)
	if err != nil {
		return nil, fmt.Errorf("query reminder candidates: %w", err)
	}
	defer rows.Close()

	var candidates []model.ReminderCandidate
	for rows.Next() {
		var c model.ReminderCandidate
		var times []string
		var endDate sql.NullTime

		if err := rows.Scan(
			&c.Medication.ID,
			&c.Medication.UserID,
			&c.Medication.Name,
			&c.Medication.Dosage,
			&c.Medication.Frequency,
			pq.Array(&times),
			&c.Medication.StartDate,
			&endDate,
			&c.Medication.Notes,
			&c.Medication.Active,
			&c.Email,
			&c.Preferences.EmailNotifications,
			&c.Preferences.ReminderLeadTime,
		); err != nil {
			return nil, fmt.Errorf("scan reminder candidate: %w", err)
		}

		c.Medication.Times = times
		if endDate.Valid {
			end := endDate.Time
			c.Medication.EndDate = &end
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

func scanDeliveries(rows *sql.Rows) ([]*model.ReminderDelivery, error) {
	var deliveries []*model.ReminderDelivery
	for rows.Next() {
		var d model.ReminderDelivery
		var status string
		var lastAttempt sql.NullTime

		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.MedicationID,
			&d.Recipient,
			&d.MedicationName,
			&d.Dosage,
			&d.DoseTime,
			&d.Notes,
			&d.ScheduledFor,
			&status,
			&d.AttemptCount,
			&d.MaxAttempts,
			&d.NextAttemptAt,
			&lastAttempt,
			&d.LastError,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}

		d.Status = model.DeliveryStatus(status)
		if lastAttempt.Valid {
			t := lastAttempt.Time
			d.LastAttemptAt = &t
		}
		deliveries = append(deliveries, &d)
	}

	return deliveries, rows.Err()
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

// IsNotFound reports whether err means the delivery row is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeliveryNotFound)
}
