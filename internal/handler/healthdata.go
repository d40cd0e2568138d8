package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/handler/dto"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/service"
)

// HealthDataService stores health metrics and wearable readings.
// *service.HealthService implements it.
type HealthDataService interface {
	Latest(ctx context.Context, userID string) (service.LatestMetrics, error)
	Save(ctx context.Context, m *model.HealthMetric) (*model.HealthMetric, error)
	History(ctx context.Context, userID string) ([]*model.HealthMetric, error)
	RecordReading(ctx context.Context, r *model.SensorReading) (*model.SensorReading, error)
	LatestReading(ctx context.Context, userID string) (*model.SensorReading, error)
}

// HealthDataHandler serves health metrics and sensor readings.
type HealthDataHandler struct {
	responder
	svc HealthDataService
}

// NewHealthDataHandler creates a new HealthDataHandler.
func NewHealthDataHandler(svc HealthDataService, v *Validator, logger *slog.Logger) *HealthDataHandler {
	return &HealthDataHandler{responder: newResponder(logger, v), svc: svc}
}

// profileMetrics is the latest-metrics fallback built from the profile.
type profileMetrics struct {
	Age         *int     `json:"age"`
	Weight      *float64 `json:"weight"`
	Height      *float64 `json:"height"`
	Gender      *string  `json:"gender"`
	FromProfile bool     `json:"fromProfile"`
}

// LatestMetrics handles GET /api/health-metrics/latest.
func (h *HealthDataHandler) LatestMetrics(w http.ResponseWriter, r *http.Request) {
	latest, err := h.svc.Latest(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}

	switch {
	case latest.Metric != nil:
		writeJSON(w, http.StatusOK, latest.Metric)
	case latest.Profile != nil:
		p := latest.Profile
		writeJSON(w, http.StatusOK, profileMetrics{
			Age:         p.Age,
			Weight:      p.Weight,
			Height:      p.Height,
			Gender:      p.Gender,
			FromProfile: true,
		})
	default:
		writeJSON(w, http.StatusOK, struct{}{})
	}
}

// SaveMetrics handles POST /api/health-metrics/save.
func (h *HealthDataHandler) SaveMetrics(w http.ResponseWriter, r *http.Request) {
	var req dto.HealthMetricRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid input values")
		return
	}

	m, err := h.svc.Save(r.Context(), &model.HealthMetric{
		UserID:        auth.UserIDFromContext(r.Context()),
		Age:           req.Age.Int(),
		Weight:        req.Weight.Float(),
		Height:        req.Height.Float(),
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
		Goal:          req.Goal,
		BMR:           req.BMR.Float(),
		TDEE:          req.TDEE.Float(),
		Unit:          req.Unit,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// MetricsHistory handles GET /api/health-metrics/history.
func (h *HealthDataHandler) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.History(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// RecordReading handles POST /api/sensor-data.
func (h *HealthDataHandler) RecordReading(w http.ResponseWriter, r *http.Request) {
	var req dto.SensorReadingRequest
	if !h.bind(w, r, &req) {
		return
	}

	reading := &model.SensorReading{
		UserID:           auth.UserIDFromContext(r.Context()),
		HeartRate:        req.HeartRate,
		BodyTemperature:  req.BodyTemperature,
		OxygenSaturation: req.OxygenSaturation,
		Activity:         req.Activity,
	}
	if req.BloodPressure != nil {
		reading.BloodPressure = &model.BloodPressure{
			Systolic:  req.BloodPressure.Systolic,
			Diastolic: req.BloodPressure.Diastolic,
		}
	}
	if req.Timestamp != nil {
		reading.RecordedAt = req.Timestamp.UTC()
	}

	saved, err := h.svc.RecordReading(r.Context(), reading)
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to save sensor data")
		return
	}
	writeJSON(w, http.StatusCreated, dto.OK(saved))
}

// LatestReading handles GET /api/sensor-data/latest.
func (h *HealthDataHandler) LatestReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.svc.LatestReading(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch sensor data")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(reading))
}
