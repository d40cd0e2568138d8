package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// Errors for alert operations.
var (
	ErrAlertNotFound        = errors.New("alert not found")
	ErrContactAlertNotFound = errors.New("contact alert not found")
)

const alertColumns = `id, user_id, message, location, medical_info, status, created_at, resolved_at`

// CreateAlert inserts an alert in the Active state.
func (r *Repository) CreateAlert(ctx context.Context, a *model.EmergencyAlert) error {
	query := `
		INSERT INTO emergency_alerts (id, user_id, message, location, medical_info, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if a.Status == "" {
		a.Status = model.AlertStatusActive
	}

	err := r.db.QueryRow(ctx, query, a.ID, a.UserID, a.Message, a.Location, a.MedicalInfo, a.Status).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// RecordContactAlert stores the delivery outcome for one contact.
func (r *Repository) RecordContactAlert(ctx context.Context, ca *model.ContactAlert) error {
	query := `
		INSERT INTO emergency_contact_alerts (id, alert_id, contact_id, contact_name, email_sent, sms_sent, response_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (alert_id, contact_id) DO UPDATE
		SET email_sent = EXCLUDED.email_sent, sms_sent = EXCLUDED.sms_sent
		RETURNING created_at
	`
	if ca.ResponseStatus == "" {
		ca.ResponseStatus = model.ResponsePending
	}

	err := r.db.QueryRow(ctx, query,
		ca.ID,
		ca.AlertID,
		ca.ContactID,
		ca.ContactName,
		ca.EmailSent,
		ca.SMSSent,
		ca.ResponseStatus,
	).Scan(&ca.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record contact alert: %w", err)
	}
	return nil
}

// ListAlerts returns the user's alerts, newest first, with their deliveries.
func (r *Repository) ListAlerts(ctx context.Context, userID string, limit int) ([]*model.EmergencyAlert, error) {
	query := `SELECT ` + alertColumns + `
		FROM emergency_alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*model.EmergencyAlert, 0)
	byID := make(map[string]*model.EmergencyAlert)
	ids := make([]string, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return alerts, nil
	}

	deliveries, err := r.listContactAlerts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range deliveries {
		if a, ok := byID[d.AlertID]; ok {
			a.Deliveries = append(a.Deliveries, d)
		}
	}

	return alerts, nil
}

func (r *Repository) listContactAlerts(ctx context.Context, alertIDs []string) ([]model.ContactAlert, error) {
	query := `
		SELECT id, alert_id, contact_id, contact_name, email_sent, sms_sent, response_status, response_time, created_at
		FROM emergency_contact_alerts
		WHERE alert_id = ANY($1)
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, alertIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact alerts: %w", err)
	}
	defer rows.Close()

	var out []model.ContactAlert
	for rows.Next() {
		var ca model.ContactAlert
		if err := rows.Scan(
			&ca.ID,
			&ca.AlertID,
			&ca.ContactID,
			&ca.ContactName,
			&ca.EmailSent,
			&ca.SMSSent,
			&ca.ResponseStatus,
			&ca.ResponseTime,
			&ca.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact alert: %w", err)
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}

// ResolveAlert marks the alert resolved.
func (r *Repository) ResolveAlert(ctx context.Context, userID, id string) (*model.EmergencyAlert, error) {
	query := `
		UPDATE emergency_alerts
		SET status = 'Resolved', resolved_at = COALESCE(resolved_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING ` + alertColumns

	a, err := scanAlert(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}
	return a, nil
}

// AcknowledgeContactAlert records that a contact responded to an alert.
func (r *Repository) AcknowledgeContactAlert(ctx context.Context, alertID, contactID string) error {
	query := `
		UPDATE emergency_contact_alerts
		SET response_status = 'Acknowledged', response_time = COALESCE(response_time, NOW())
		WHERE alert_id = $1 AND contact_id = $2
	`
	tag, err := r.db.Exec(ctx, query, alertID, contactID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	return rowAffected(tag, ErrContactAlertNotFound)
}

func scanAlert(row pgx.Row) (*model.EmergencyAlert, error) {
	var a model.EmergencyAlert
	err := row.Scan(&a.ID, &a.UserID, &a.Message, &a.Location, &a.MedicalInfo, &a.Status, &a.CreatedAt, &a.ResolvedAt)
	return &a, err
}
