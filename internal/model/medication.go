package model

import (
	"fmt"
	"time"
)

// Medication is a medication schedule.
type Medication struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Dosage     string     `json:"dosage"`
	Frequency  string     `json:"frequency"`
	Times      []string   `json:"times"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Notes      string     `json:"notes"`
	Active     bool       `json:"active"`
	DosesTaken int        `json:"doses_taken"`
	TotalDoses int        `json:"total_doses"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ActiveOn reports whether the schedule covers the calendar day of t.
func (m *Medication) ActiveOn(t time.Time) bool {
	if !m.Active {
		return false
	}
	day := truncateDay(t)
	if day.Before(truncateDay(m.StartDate)) {
		return false
	}
	return m.EndDate == nil || !day.After(truncateDay(*m.EndDate))
}

// MedicationTracking records whether a scheduled dose was taken.
type MedicationTracking struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	MedicationID  string     `json:"medication_id"`
	ScheduledTime string     `json:"scheduled_time"`
	Taken         bool       `json:"taken"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ParseDoseTime parses an "HH:MM" or "HH:MM:SS" dose time into hours and minutes.
func ParseDoseTime(s string) (hour, minute int, err error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("invalid dose time %q", s)
}

// NotificationPreferences controls medication reminder emails.
type NotificationPreferences struct {
	EmailNotifications bool `json:"EmailNotifications"`
	ReminderLeadTime   int  `json:"ReminderLeadTime"`
}

// DefaultNotificationPreferences applies when the user never saved preferences.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{EmailNotifications: true, ReminderLeadTime: 15}
}
