package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// Errors for health data lookups.
var (
	ErrHealthMetricNotFound  = errors.New("health metric not found")
	ErrSensorReadingNotFound = errors.New("sensor reading not found")
)

const healthMetricColumns = `id, user_id, age, weight, height, gender, activity_level, goal, bmr, tdee, unit, created_at`

// CreateHealthMetric inserts a metrics snapshot.
func (r *Repository) CreateHealthMetric(ctx context.Context, m *model.HealthMetric) error {
	query := `
		INSERT INTO health_metrics (id, user_id, age, weight, height, gender, activity_level, goal, bmr, tdee, unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		m.ID,
		m.UserID,
		m.Age,
		m.Weight,
		m.Height,
		m.Gender,
		m.ActivityLevel,
		m.Goal,
		m.BMR,
		m.TDEE,
		m.Unit,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create health metric: %w", err)
	}
	return nil
}

// LatestHealthMetric returns the newest metrics snapshot.
func (r *Repository) LatestHealthMetric(ctx context.Context, userID string) (*model.HealthMetric, error) {
	query := `SELECT ` + healthMetricColumns + `
		FROM health_metrics WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 1`

	m, err := scanHealthMetric(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHealthMetricNotFound
		}
		return nil, fmt.Errorf("failed to get latest health metric: %w", err)
	}
	return m, nil
}

// ListHealthMetrics returns the newest snapshots up to limit.
func (r *Repository) ListHealthMetrics(ctx context.Context, userID string, limit int) ([]*model.HealthMetric, error) {
	query := `SELECT ` + healthMetricColumns + `
		FROM health_metrics WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list health metrics: %w", err)
	}
	defer rows.Close()

	out := make([]*model.HealthMetric, 0)
	for rows.Next() {
		m, err := scanHealthMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan health metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanHealthMetric(row pgx.Row) (*model.HealthMetric, error) {
	var m model.HealthMetric
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Age,
		&m.Weight,
		&m.Height,
		&m.Gender,
		&m.ActivityLevel,
		&m.Goal,
		&m.BMR,
		&m.TDEE,
		&m.Unit,
		&m.CreatedAt,
	)
	return &m, err
}

// CreateSensorReading stores one wearable sample.
func (r *Repository) CreateSensorReading(ctx context.Context, s *model.SensorReading) error {
	var systolic, diastolic *float64
	if s.BloodPressure != nil {
		systolic, diastolic = &s.BloodPressure.Systolic, &s.BloodPressure.Diastolic
	}

	query := `
		INSERT INTO sensor_readings (id, user_id, heart_rate, systolic, diastolic, body_temperature, oxygen_saturation, activity, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		s.ID,
		s.UserID,
		s.HeartRate,
		systolic,
		diastolic,
		s.BodyTemperature,
		s.OxygenSaturation,
		s.Activity,
		s.RecordedAt,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sensor reading: %w", err)
	}
	return nil
}

// LatestSensorReading returns the most recently recorded sample.
func (r *Repository) LatestSensorReading(ctx context.Context, userID string) (*model.SensorReading, error) {
	query := `
		SELECT id, user_id, heart_rate, systolic, diastolic, body_temperature, oxygen_saturation, activity, recorded_at, created_at
		FROM sensor_readings
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var s model.SensorReading
	var systolic, diastolic *float64
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.HeartRate,
		&systolic,
		&diastolic,
		&s.BodyTemperature,
		&s.OxygenSaturation,
		&s.Activity,
		&s.RecordedAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSensorReadingNotFound
		}
		return nil, fmt.Errorf("failed to get latest sensor reading: %w", err)
	}
	if systolic != nil && diastolic != nil {
		s.BloodPressure = &model.BloodPressure{Systolic: *systolic, Diastolic: *diastolic}
	}
	return &s, nil
}
