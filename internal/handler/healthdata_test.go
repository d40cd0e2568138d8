package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/service"
)

func TestHealthDataHandler_LatestMetrics(t *testing.T) {
	age := 40
	tests := []struct {
		name   string
		latest service.LatestMetrics
		want   string
	}{
		{
			name:   "no data",
			latest: service.LatestMetrics{},
			want:   `{}`,
		},
		{
			name:   "profile fallback",
			latest: service.LatestMetrics{Profile: &model.UserProfile{UserID: "u1", Age: &age}},
			want:   `{"age":40,"weight":null,"height":null,"gender":null,"fromProfile":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthDataHandler(&fakeHealthData{latest: tt.latest}, nil, testLogger())

			rec := httptest.NewRecorder()
			h.LatestMetrics(rec, newRequest(http.MethodGet, "/api/health-metrics/latest", nil, "u1"))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestHealthDataHandler_SaveMetrics(t *testing.T) {
	h := NewHealthDataHandler(&fakeHealthData{}, nil, testLogger())

	rec := httptest.NewRecorder()
	h.SaveMetrics(rec, newRequest(http.MethodPost, "/api/health-metrics/save", `{"age":"31","weight":70.5,"height":172,"bmr":1650.2}`, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(31), body["age"])
	assert.Equal(t, "u1", body["user_id"])

	rec = httptest.NewRecorder()
	h.SaveMetrics(rec, newRequest(http.MethodPost, "/api/health-metrics/save", `{"age":0}`, "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthDataHandler_SensorReadings(t *testing.T) {
	svc := &fakeHealthData{}
	h := NewHealthDataHandler(svc, nil, testLogger())

	rec := httptest.NewRecorder()
	h.LatestReading(rec, newRequest(http.MethodGet, "/api/sensor-data/latest", nil, "u1"))
	assert.JSONEq(t, `{"success":true,"data":null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.RecordReading(rec, newRequest(http.MethodPost, "/api/sensor-data", `{"activity":"walking"}`, "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NO_VITALS", decodeMap(t, rec)["code"])

	rec = httptest.NewRecorder()
	h.RecordReading(rec, newRequest(http.MethodPost, "/api/sensor-data",
		`{"heartRate":72,"bloodPressure":{"systolic":120,"diastolic":80},"timestamp":"2024-03-10T08:00:00Z"}`, "u1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.saved)
	assert.Equal(t, 80.0, svc.saved.BloodPressure.Diastolic)
	assert.Equal(t, 2024, svc.saved.RecordedAt.Year())
}
