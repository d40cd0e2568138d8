package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceHandler_UpdateEmergencyAcceptsBothCasings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"camelCase", `{"sendToEmergencyContacts":false,"sendToAmbulanceService":true}`},
		{"PascalCase", `{"SendToEmergencyContacts":false,"SendToAmbulanceService":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePreferences{}
			h := NewPreferenceHandler(svc, true, nil, testLogger())

			rec := httptest.NewRecorder()
			h.UpdateEmergency(rec, newRequest(http.MethodPut, "/api/emergency-preferences", tt.body, "u1"))

			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, svc.emergencyIn.SendToEmergencyContacts)
			require.NotNil(t, svc.emergencyIn.SendToAmbulanceService)
			assert.False(t, *svc.emergencyIn.SendToEmergencyContacts)
			assert.True(t, *svc.emergencyIn.SendToAmbulanceService)

			body := decodeMap(t, rec)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, true, body["data"].(map[string]any)["SendToAmbulanceService"])
		})
	}
}

func TestPreferenceHandler_UpdateEmergencyMissingFieldsUseDefaults(t *testing.T) {
	svc := &fakePreferences{}
	h := NewPreferenceHandler(svc, true, nil, testLogger())

	rec := httptest.NewRecorder()
	h.UpdateEmergency(rec, newRequest(http.MethodPut, "/api/emergency-preferences", `{}`, "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.emergencyIn.SendToEmergencyContacts)
	assert.Nil(t, svc.emergencyIn.SendToAmbulanceService)
}

func TestPreferenceHandler_Notifications(t *testing.T) {
	svc := &fakePreferences{}
	h := NewPreferenceHandler(svc, false, nil, testLogger())

	rec := httptest.NewRecorder()
	h.Notifications(rec, newRequest(http.MethodGet, "/api/user-preferences/notifications", nil, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeMap(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["EmailNotifications"])
	assert.Equal(t, float64(15), data["ReminderLeadTime"])

	rec = httptest.NewRecorder()
	h.UpdateNotifications(rec, newRequest(http.MethodPut, "/api/user-preferences/notifications", `{"ReminderLeadTime":30}`, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.notifyIn.ReminderLeadTime)
	assert.Equal(t, 30, *svc.notifyIn.ReminderLeadTime)

	rec = httptest.NewRecorder()
	h.UpdateNotifications(rec, newRequest(http.MethodPut, "/api/user-preferences/notifications", `{"reminderLeadTime":5000}`, "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_LEAD_TIME", decodeMap(t, rec)["code"])
}

func TestPreferenceHandler_SendTestNotification(t *testing.T) {
	svc := &fakePreferences{}
	h := NewPreferenceHandler(svc, true, nil, testLogger())

	rec := httptest.NewRecorder()
	h.SendTestNotification(rec, newRequest(http.MethodPost, "/api/user-preferences/notifications/test", nil, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1@example.com", svc.testEmail)

	rec = httptest.NewRecorder()
	h.SendTestNotification(rec, newRequest(http.MethodPost, "/api/user-preferences/notifications/test", nil, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPreferenceHandler_NotificationsHealth(t *testing.T) {
	h := NewPreferenceHandler(&fakePreferences{}, true, nil, testLogger())

	rec := httptest.NewRecorder()
	h.NotificationsHealth(rec, httptest.NewRequest(http.MethodGet, "/api/notifications/health", nil))

	assert.Equal(t, map[string]any{"status": "healthy", "emailConfigured": true}, decodeMap(t, rec))
}
