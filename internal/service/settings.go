package service

import (
	"context"
	"regexp"

	"github.com/evansachie/lifeguard/internal/model"
)

var dayEndTimeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// SettingsService reads and writes user settings.
type SettingsService struct {
	store SettingsStore
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the user's settings, creating the defaults on first read.
func (s *SettingsService) Get(ctx context.Context, userID string) (*model.Settings, error) {
	return s.store.GetOrCreateSettings(ctx, userID)
}

// Update validates and upserts settings.
func (s *SettingsService) Update(ctx context.Context, settings *model.Settings) (*model.Settings, error) {
	if settings.MeasurementUnit == "" {
		settings.MeasurementUnit = model.UnitMetric
	}
	if settings.MeasurementUnit != model.UnitMetric && settings.MeasurementUnit != model.UnitImperial {
		return nil, ErrInvalidMeasurementUnit
	}
	if settings.DayEndTime == "" {
		settings.DayEndTime = "00:00:00"
	}
	if !dayEndTimeRegex.MatchString(settings.DayEndTime) {
		return nil, ErrInvalidDayEndTime
	}
	if len(settings.DayEndTime) == len("15:04") {
		settings.DayEndTime += ":00"
	}

	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
