package model

import "time"

// HealthMetric is a saved snapshot from the health metrics calculator.
type HealthMetric struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Age           int       `json:"age"`
	Weight        float64   `json:"weight"`
	Height        float64   `json:"height"`
	Gender        string    `json:"gender"`
	ActivityLevel string    `json:"activity_level"`
	Goal          string    `json:"goal"`
	BMR           float64   `json:"bmr"`
	TDEE          float64   `json:"tdee"`
	Unit          string    `json:"unit"`
	CreatedAt     time.Time `json:"created_at"`
}

// BloodPressure is a systolic/diastolic pair in mmHg.
type BloodPressure struct {
	Systolic  float64 `json:"systolic"`
	Diastolic float64 `json:"diastolic"`
}

// SensorReading is one sample pushed by the wearable.
type SensorReading struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	HeartRate        *float64       `json:"heartRate,omitempty"`
	BloodPressure    *BloodPressure `json:"bloodPressure,omitempty"`
	BodyTemperature  *float64       `json:"bodyTemperature,omitempty"`
	OxygenSaturation *float64       `json:"oxygenSaturation,omitempty"`
	Activity         string         `json:"activity,omitempty"`
	RecordedAt       time.Time      `json:"timestamp"`
	CreatedAt        time.Time      `json:"created_at"`
}

// HasVitals reports whether the reading carries at least one measurement.
func (s *SensorReading) HasVitals() bool {
	return s.HeartRate != nil || s.BloodPressure != nil || s.BodyTemperature != nil || s.OxygenSaturation != nil
}
