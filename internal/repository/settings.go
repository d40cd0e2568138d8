package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// GetOrCreateSettings returns the user's settings, creating the default row
// on first access.
func (r *Repository) GetOrCreateSettings(ctx context.Context, userID string) (*model.Settings, error) {
	s, err := r.getSettings(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	defaults := model.DefaultSettings(userID)
	query := `
		INSERT INTO user_settings (user_id, campaign_name, day_end_time, notification_enabled, measurement_unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query,
		defaults.UserID,
		defaults.CampaignName,
		defaults.DayEndTime,
		defaults.NotificationEnabled,
		defaults.MeasurementUnit,
	); err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}

	s, err = r.getSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// UpsertSettings writes the user's settings.
func (r *Repository) UpsertSettings(ctx context.Context, s *model.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, campaign_name, day_end_time, notification_enabled, measurement_unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET campaign_name = EXCLUDED.campaign_name,
		    day_end_time = EXCLUDED.day_end_time,
		    notification_enabled = EXCLUDED.notification_enabled,
		    measurement_unit = EXCLUDED.measurement_unit,
		    updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		s.UserID,
		s.CampaignName,
		s.DayEndTime,
		s.NotificationEnabled,
		s.MeasurementUnit,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

func (r *Repository) getSettings(ctx context.Context, userID string) (*model.Settings, error) {
	query := `
		SELECT user_id, campaign_name, day_end_time, notification_enabled, measurement_unit, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var s model.Settings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.CampaignName,
		&s.DayEndTime,
		&s.NotificationEnabled,
		&s.MeasurementUnit,
		&s.UpdatedAt,
	)
	return &s, err
}

// UpsertMeasurement stores the latest calculator inputs.
func (r *Repository) UpsertMeasurement(ctx context.Context, m *model.Measurement) error {
	query := `
		INSERT INTO user_measurements (user_id, age, weight, height, gender, activity_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET age = EXCLUDED.age,
		    weight = EXCLUDED.weight,
		    height = EXCLUDED.height,
		    gender = EXCLUDED.gender,
		    activity_level = EXCLUDED.activity_level,
		    updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, m.UserID, m.Age, m.Weight, m.Height, m.Gender, m.ActivityLevel); err != nil {
		return fmt.Errorf("failed to upsert measurement: %w", err)
	}
	return nil
}

// CreateCalorieCalculation records one calculator result.
func (r *Repository) CreateCalorieCalculation(ctx context.Context, c *model.CalorieCalculation) error {
	query := `
		INSERT INTO calorie_calculations (id, user_id, resting_calories, calorie_intake, calories_burned, activity_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		c.ID,
		c.UserID,
		c.RestingCalories,
		c.CalorieIntake,
		c.CaloriesBurned,
		c.ActivityLevel,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create calorie calculation: %w", err)
	}
	return nil
}

// ListCalorieCalculations returns the user's most recent calculations.
func (r *Repository) ListCalorieCalculations(ctx context.Context, userID string, limit int) ([]*model.CalorieCalculation, error) {
	query := `
		SELECT id, user_id, resting_calories, calorie_intake, calories_burned, activity_level, created_at
		FROM calorie_calculations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calorie calculations: %w", err)
	}
	defer rows.Close()

	out := make([]*model.CalorieCalculation, 0)
	for rows.Next() {
		var c model.CalorieCalculation
		if err := rows.Scan(&c.ID, &c.UserID, &c.RestingCalories, &c.CalorieIntake, &c.CaloriesBurned, &c.ActivityLevel, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calorie calculation: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
