package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// LatestMetrics is the latest health metrics view. Exactly one of Metric
// and Profile is set, or neither when the user has no data.
type LatestMetrics struct {
	Metric  *model.HealthMetric
	Profile *model.UserProfile
}

// HealthService stores calculator snapshots and wearable readings.
type HealthService struct {
	store  HealthStore
	logger *slog.Logger
	now    clock
}

// NewHealthService creates a new HealthService.
func NewHealthService(store HealthStore, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{store: store, logger: logger, now: utcNow}
}

// Latest returns the newest metrics row, falling back to the profile.
func (s *HealthService) Latest(ctx context.Context, userID string) (LatestMetrics, error) {
	m, err := s.store.LatestHealthMetric(ctx, userID)
	if err == nil {
		return LatestMetrics{Metric: m}, nil
	}
	if !errors.Is(err, repository.ErrHealthMetricNotFound) {
		return LatestMetrics{}, err
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return LatestMetrics{}, nil
		}
		return LatestMetrics{}, err
	}
	return LatestMetrics{Profile: p}, nil
}

// Save stores a metrics snapshot and mirrors the measurements onto the
// profile when one exists.
func (s *HealthService) Save(ctx context.Context, m *model.HealthMetric) (*model.HealthMetric, error) {
	if m.Age <= 0 || m.Weight <= 0 || m.Height <= 0 {
		return nil, ErrInvalidInput
	}
	m.ID = repository.NewID()
	if err := s.store.CreateHealthMetric(ctx, m); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProfileMeasurements(ctx, m.UserID, m.Age, m.Weight, m.Height, m.Gender); err != nil {
		return nil, fmt.Errorf("failed to sync profile: %w", err)
	}
	s.logger.Debug("health_metric_saved", "user_id", m.UserID, "metric_id", m.ID)
	return m, nil
}

// History returns the most recent snapshots.
func (s *HealthService) History(ctx context.Context, userID string) ([]*model.HealthMetric, error) {
	return s.store.ListHealthMetrics(ctx, userID, historyLimit)
}

// RecordReading stores a wearable sample. At least one vital is required.
func (s *HealthService) RecordReading(ctx context.Context, r *model.SensorReading) (*model.SensorReading, error) {
	if !r.HasVitals() {
		return nil, ErrNoVitals
	}
	r.ID = repository.NewID()
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.now()
	}
	if err := s.store.CreateSensorReading(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// LatestReading returns the newest sample, or nil when there is none.
func (s *HealthService) LatestReading(ctx context.Context, userID string) (*model.SensorReading, error) {
	r, err := s.store.LatestSensorReading(ctx, userID)
	if errors.Is(err, repository.ErrSensorReadingNotFound) {
		return nil, nil
	}
	return r, err
}
