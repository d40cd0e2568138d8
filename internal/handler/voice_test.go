package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evansachie/lifeguard/internal/service"
	"github.com/evansachie/lifeguard/internal/voice"
)

func newVoiceHandler() (*VoiceHandler, *fakeVoice) {
	svc := &fakeVoice{parser: voice.NewParser()}
	return NewVoiceHandler(svc, testLogger()), svc
}

func TestVoiceHandler_Process(t *testing.T) {
	h, _ := newVoiceHandler()

	rec := httptest.NewRecorder()
	h.Process(rec, newRequest(http.MethodPost, "/api/voice-commands/process", `{"command":"show my medication","context":{"screen":"home"}}`, "u1"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "medication", body["intent"])
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "execution")
}

func TestVoiceHandler_CommandRequired(t *testing.T) {
	h, _ := newVoiceHandler()

	for _, body := range []string{`{}`, `{"command":"   "}`} {
		rec := httptest.NewRecorder()
		h.Process(rec, newRequest(http.MethodPost, "/api/voice-commands/process", body, "u1"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Voice command is required", decodeMap(t, rec)["error"])
	}
}

func TestVoiceHandler_Emergency(t *testing.T) {
	h, svc := newVoiceHandler()

	rec := httptest.NewRecorder()
	h.Emergency(rec, newRequest(http.MethodPost, "/api/voice-commands/emergency", `{"command":"help","location":"Tema","medicalInfo":"Asthma"}`, "u1"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, true, body["emergency"])
	assert.Equal(t, service.EmergencyDetails{Location: "Tema", MedicalInfo: "Asthma"}, svc.emergency)
	execution := body["execution"].([]any)
	require.Len(t, execution, 1)
	assert.Equal(t, "emergency_alert", execution[0].(map[string]any)["action"])
}

func TestVoiceHandler_ProcessFailure(t *testing.T) {
	h, svc := newVoiceHandler()
	svc.err = errBoom

	rec := httptest.NewRecorder()
	h.Process(rec, newRequest(http.MethodPost, "/api/voice-commands/process", `{"command":"sos"}`, "u1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to process voice command", decodeMap(t, rec)["error"])
}

func TestVoiceHandler_Commands(t *testing.T) {
	h, _ := newVoiceHandler()

	rec := httptest.NewRecorder()
	h.Commands(rec, httptest.NewRequest(http.MethodGet, "/api/voice-commands/commands", nil))

	body := decodeMap(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(6), body["total"])
	assert.Len(t, body["commands"], 6)
}
