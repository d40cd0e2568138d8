package model

import "time"

// DeliveryStatus represents reminder delivery state.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusSent      DeliveryStatus = "sent"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	DeliveryStatusExhausted DeliveryStatus = "exhausted"
)

// ReminderDelivery is a queued medication reminder email.
type ReminderDelivery struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	MedicationID   string         `json:"medication_id"`
	Recipient      string         `json:"recipient"`
	MedicationName string         `json:"medication_name"`
	Dosage         string         `json:"dosage"`
	DoseTime       string         `json:"dose_time"`
	Notes          string         `json:"notes,omitempty"`
	ScheduledFor   time.Time      `json:"scheduled_for"`
	Status         DeliveryStatus `json:"status"`
	AttemptCount   int            `json:"attempt_count"`
	MaxAttempts    int            `json:"max_attempts"`
	NextAttemptAt  time.Time      `json:"next_attempt_at"`
	LastAttemptAt  *time.Time     `json:"last_attempt_at,omitempty"`
	LastError      string         `json:"last_error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CanRetry returns true if delivery can be retried.
func (d *ReminderDelivery) CanRetry() bool {
	return d.Status == DeliveryStatusFailed && d.AttemptCount < d.MaxAttempts
}

// IsTerminal returns true if delivery is in a terminal state.
func (d *ReminderDelivery) IsTerminal() bool {
	return d.Status == DeliveryStatusSent || d.Status == DeliveryStatusExhausted
}

// ReminderCandidate is an active medication joined with its owner's
// reminder settings, as read by the scheduler.
type ReminderCandidate struct {
	Medication  Medication
	Email       string
	Preferences NotificationPreferences
}
