package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// GetEmergencyPreferences returns the stored preferences, or the defaults
// when the user never saved any.
func (r *Repository) GetEmergencyPreferences(ctx context.Context, userID string) (model.EmergencyPreferences, error) {
	query := `
		SELECT send_to_emergency_contacts, send_to_ambulance_service
		FROM emergency_preferences
		WHERE user_id = $1
	`

	var p model.EmergencyPreferences
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.SendToEmergencyContacts, &p.SendToAmbulanceService)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultEmergencyPreferences(), nil
		}
		return model.EmergencyPreferences{}, fmt.Errorf("failed to get emergency preferences: %w", err)
	}
	return p, nil
}

// UpsertEmergencyPreferences writes the user's emergency preferences.
func (r *Repository) UpsertEmergencyPreferences(ctx context.Context, userID string, p model.EmergencyPreferences) error {
	query := `
		INSERT INTO emergency_preferences (user_id, send_to_emergency_contacts, send_to_ambulance_service)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET send_to_emergency_contacts = EXCLUDED.send_to_emergency_contacts,
		    send_to_ambulance_service = EXCLUDED.send_to_ambulance_service,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, p.SendToEmergencyContacts, p.SendToAmbulanceService); err != nil {
		return fmt.Errorf("failed to update emergency preferences: %w", err)
	}
	return nil
}

// GetNotificationPreferences returns the stored reminder preferences, or the
// defaults when the user never saved any.
func (r *Repository) GetNotificationPreferences(ctx context.Context, userID string) (model.NotificationPreferences, error) {
	query := `
		SELECT email_notifications, reminder_lead_time
		FROM notification_preferences
		WHERE user_id = $1
	`

	var p model.NotificationPreferences
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.EmailNotifications, &p.ReminderLeadTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultNotificationPreferences(), nil
		}
		return model.NotificationPreferences{}, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	return p, nil
}

// UpsertNotificationPreferences writes the user's reminder preferences.
func (r *Repository) UpsertNotificationPreferences(ctx context.Context, userID string, p model.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences (user_id, email_notifications, reminder_lead_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET email_notifications = EXCLUDED.email_notifications,
		    reminder_lead_time = EXCLUDED.reminder_lead_time,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, p.EmailNotifications, p.ReminderLeadTime); err != nil {
		return fmt.Errorf("failed to update notification preferences: %w", err)
	}
	return nil
}
