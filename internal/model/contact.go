package model

import "time"

// DefaultContactRole is assigned when a contact is created without a role.
const DefaultContactRole = "General"

// EmergencyContact is a person notified when the user raises an alert.
type EmergencyContact struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	Name                  string     `json:"name"`
	Phone                 string     `json:"phone"`
	Email                 string     `json:"email"`
	Relationship          string     `json:"relationship"`
	Priority              int        `json:"priority"`
	Role                  string     `json:"role"`
	IsVerified            bool       `json:"is_verified"`
	VerificationTokenHash string     `json:"-"`
	VerifiedAt            *time.Time `json:"verified_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// AlertStatus is the lifecycle state of an emergency alert.
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "Active"
	AlertStatusResolved AlertStatus = "Resolved"
)

// Contact response states recorded per delivered alert.
const (
	ResponsePending      = "Pending"
	ResponseAcknowledged = "Acknowledged"
)

// EmergencyAlert is one alert raised by a user.
type EmergencyAlert struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Message     string         `json:"message"`
	Location    string         `json:"location"`
	MedicalInfo string         `json:"medical_info"`
	Status      AlertStatus    `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	Deliveries  []ContactAlert `json:"deliveries,omitempty"`
}

// ContactAlert records how an alert reached one contact.
type ContactAlert struct {
	ID             string     `json:"id"`
	AlertID        string     `json:"alert_id"`
	ContactID      string     `json:"contact_id"`
	ContactName    string     `json:"contact_name"`
	EmailSent      bool       `json:"email_sent"`
	SMSSent        bool       `json:"sms_sent"`
	ResponseStatus string     `json:"response_status"`
	ResponseTime   *time.Time `json:"response_time,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// EmergencyPreferences controls who receives an alert.
// JSON keys keep the casing the mobile and web clients already read.
type EmergencyPreferences struct {
	SendToEmergencyContacts bool `json:"SendToEmergencyContacts"`
	SendToAmbulanceService  bool `json:"SendToAmbulanceService"`
}

// DefaultEmergencyPreferences applies when the user never saved preferences.
func DefaultEmergencyPreferences() EmergencyPreferences {
	return EmergencyPreferences{SendToEmergencyContacts: true}
}

// FavoriteSound is a sound bookmarked from the relaxation library.
type FavoriteSound struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SoundID    string    `json:"sound_id"`
	SoundName  string    `json:"sound_name"`
	SoundURL   string    `json:"sound_url"`
	PreviewURL string    `json:"preview_url"`
	Category   string    `json:"category"`
	Duration   float64   `json:"duration"`
	CreatedAt  time.Time `json:"created_at"`
}
