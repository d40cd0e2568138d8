package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/service"
)

type fakeSettings struct {
	stored map[string]*model.Settings
	err    error
}

func (f *fakeSettings) Get(_ context.Context, userID string) (*model.Settings, error) {
	if s, ok := f.stored[userID]; ok {
		return s, nil
	}
	return model.DefaultSettings(userID), nil
}

func (f *fakeSettings) Update(_ context.Context, s *model.Settings) (*model.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.stored[s.UserID] = s
	return s, nil
}

func TestSettingsHandler_GetAndUpdate(t *testing.T) {
	svc := &fakeSettings{stored: map[string]*model.Settings{}}
	h := NewSettingsHandler(svc, nil, testLogger())

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(http.MethodGet, "/api/settings", nil, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decodeMap(t, rec)["user_id"])

	rec = httptest.NewRecorder()
	h.Update(rec, newRequest(http.MethodPut, "/api/settings", map[string]any{
		"campaign_name":        "Hydrate",
		"day_end_time":         "22:30",
		"notification_enabled": true,
		"measurement_unit":     model.UnitMetric,
	}, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User settings updated successfully", decodeMap(t, rec)["message"])
	require.Contains(t, svc.stored, "u1")
	assert.Equal(t, "Hydrate", svc.stored["u1"].CampaignName)
	assert.True(t, svc.stored["u1"].NotificationEnabled)
}

func TestSettingsHandler_UpdateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"measurement unit", service.ErrInvalidMeasurementUnit, "INVALID_MEASUREMENT_UNIT"},
		{"day end time", service.ErrInvalidDayEndTime, "INVALID_DAY_END_TIME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSettingsHandler(&fakeSettings{stored: map[string]*model.Settings{}, err: tt.err}, nil, testLogger())

			rec := httptest.NewRecorder()
			h.Update(rec, newRequest(http.MethodPut, "/api/settings", map[string]any{"measurement_unit": "Cubits"}, "u1"))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeMap(t, rec)["code"])
		})
	}
}
