package dto

import "time"

// MemoRequest is the body of the memo create and update routes.
type MemoRequest struct {
	Memo string `json:"memo" validate:"required"`
}

// MemoDoneRequest is the body of PUT /api/memos/{id}/done.
type MemoDoneRequest struct {
	Done *bool `json:"done"`
}

// CalculatorRequest is the BMR calculator form.
type CalculatorRequest struct {
	Age           Number `json:"age"`
	Weight        Number `json:"weight"`
	Height        Number `json:"height"`
	Gender        string `json:"gender"`
	ActivityLevel string `json:"activityLevel"`
}

// SettingsRequest is the body of PUT /api/settings.
type SettingsRequest struct {
	CampaignName        string `json:"campaign_name" validate:"max=255"`
	DayEndTime          string `json:"day_end_time"`
	NotificationEnabled bool   `json:"notification_enabled"`
	MeasurementUnit     string `json:"measurement_unit"`
}

// ContactRequest is the body of the contact create and update routes.
type ContactRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Phone        string `json:"phone" validate:"required,max=32"`
	Email        string `json:"email" validate:"required,email"`
	Relationship string `json:"relationship" validate:"max=100"`
	Priority     int    `json:"priority" validate:"gte=0"`
	Role         string `json:"role" validate:"max=50"`
}

// AlertRequest is the optional detail sent with an emergency alert.
type AlertRequest struct {
	Message     string `json:"message"`
	Location    string `json:"location"`
	MedicalInfo string `json:"medicalInfo"`
}

// EmergencyPreferencesRequest toggles alert recipients. encoding/json
// matches keys case-insensitively, so PascalCase keys decode as well.
type EmergencyPreferencesRequest struct {
	SendToEmergencyContacts *bool `json:"sendToEmergencyContacts"`
	SendToAmbulanceService  *bool `json:"sendToAmbulanceService"`
}

// NotificationPreferencesRequest updates reminder preferences. PascalCase
// keys decode as well.
type NotificationPreferencesRequest struct {
	EmailNotifications *bool `json:"emailNotifications"`
	ReminderLeadTime   *int  `json:"reminderLeadTime"`
}

// FavoriteSoundRequest bookmarks a sound.
type FavoriteSoundRequest struct {
	UserID     string `json:"userId" validate:"required"`
	SoundID    string `json:"soundId" validate:"required"`
	SoundName  string `json:"soundName"`
	SoundURL   string `json:"soundUrl"`
	PreviewURL string `json:"previewUrl"`
	Category   string `json:"category"`
	Duration   Number `json:"duration"`
}

// WorkoutRequest reports a completed workout.
type WorkoutRequest struct {
	WorkoutID       string `json:"workout_id"`
	WorkoutType     string `json:"workout_type" validate:"required"`
	CaloriesBurned  Number `json:"calories_burned"`
	DurationMinutes Number `json:"duration_minutes"`
}

// GoalRequest sets the active workout goal.
type GoalRequest struct {
	GoalType string `json:"goalType" validate:"required"`
}

// HealthMetricRequest is a snapshot from the health metrics calculator.
type HealthMetricRequest struct {
	Age           Number `json:"age"`
	Weight        Number `json:"weight"`
	Height        Number `json:"height"`
	Gender        string `json:"gender"`
	ActivityLevel string `json:"activityLevel"`
	Goal          string `json:"goal"`
	BMR           Number `json:"bmr"`
	TDEE          Number `json:"tdee"`
	Unit          string `json:"unit"`
}

// BloodPressure is a systolic/diastolic pair.
type BloodPressure struct {
	Systolic  float64 `json:"systolic" validate:"gt=0"`
	Diastolic float64 `json:"diastolic" validate:"gt=0"`
}

// SensorReadingRequest is one sample pushed by the wearable.
type SensorReadingRequest struct {
	HeartRate        *float64       `json:"heartRate" validate:"omitempty,gt=0"`
	BloodPressure    *BloodPressure `json:"bloodPressure"`
	BodyTemperature  *float64       `json:"bodyTemperature" validate:"omitempty,gt=0"`
	OxygenSaturation *float64       `json:"oxygenSaturation" validate:"omitempty,gte=0,lte=100"`
	Activity         string         `json:"activity"`
	Timestamp        *time.Time     `json:"timestamp"`
}

// MedicationRequest is the body of the medication add and update routes.
type MedicationRequest struct {
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency"`
	Times     []string `json:"times"`
	StartDate *Date    `json:"startDate"`
	EndDate   *Date    `json:"endDate"`
	Notes     string   `json:"notes"`
	Active    *bool    `json:"active"`
}

// TrackRequest records one scheduled dose.
type TrackRequest struct {
	MedicationID  string `json:"medicationId"`
	ScheduledTime string `json:"scheduledTime"`
	Taken         bool   `json:"taken"`
}

// VoiceCommandRequest is a spoken command with optional client context.
type VoiceCommandRequest struct {
	Command string         `json:"command"`
	Context map[string]any `json:"context"`
}

// VoiceEmergencyRequest is a spoken emergency.
type VoiceEmergencyRequest struct {
	Command     string `json:"command"`
	Location    string `json:"location"`
	MedicalInfo string `json:"medicalInfo"`
}
