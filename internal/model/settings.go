package model

import "time"

// Measurement units accepted by user settings.
const (
	UnitMetric   = "Metric"
	UnitImperial = "Imperial"
)

// Settings holds per-user app preferences.
type Settings struct {
	UserID              string    `json:"user_id"`
	CampaignName        string    `json:"campaign_name"`
	DayEndTime          string    `json:"day_end_time"`
	NotificationEnabled bool      `json:"notification_enabled"`
	MeasurementUnit     string    `json:"measurement_unit"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings created on first read.
func DefaultSettings(userID string) *Settings {
	return &Settings{
		UserID:          userID,
		DayEndTime:      "00:00:00",
		MeasurementUnit: UnitMetric,
	}
}

// Measurement is the latest body data submitted to the calorie calculator.
type Measurement struct {
	UserID        string    `json:"user_id"`
	Age           int       `json:"age"`
	Weight        float64   `json:"weight"`
	Height        int       `json:"height"`
	Gender        string    `json:"gender"`
	ActivityLevel string    `json:"activity_level"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CalorieCalculation is one stored calculator result.
type CalorieCalculation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	RestingCalories int       `json:"restingCalories"`
	CalorieIntake   int       `json:"calorieIntake"`
	CaloriesBurned  int       `json:"caloriesBurned"`
	ActivityLevel   string    `json:"activityLevel"`
	CreatedAt       time.Time `json:"created_at"`
}
