package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/handler/dto"
	"github.com/evansachie/lifeguard/internal/service"
	"github.com/evansachie/lifeguard/internal/voice"
)

// VoiceService parses and executes spoken commands.
// *service.VoiceService implements it.
type VoiceService interface {
	Commands() []voice.Command
	Process(ctx context.Context, userID, command string, clientCtx map[string]any) (*service.VoiceResponse, error)
	ProcessEmergency(ctx context.Context, userID, command string, in service.EmergencyDetails) (*service.VoiceResponse, error)
}

// VoiceHandler serves the voice command routes.
type VoiceHandler struct {
	responder
	svc VoiceService
}

// NewVoiceHandler creates a new VoiceHandler.
func NewVoiceHandler(svc VoiceService, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{responder: newResponder(logger, nil), svc: svc}
}

// Process handles POST /api/voice-commands/process.
func (h *VoiceHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.VoiceCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeVoiceCommandRequired(w)
		return
	}

	res, err := h.svc.Process(r.Context(), auth.UserIDFromContext(r.Context()), req.Command, req.Context)
	if err != nil {
		h.voiceError(w, r, err, "Failed to process voice command")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Emergency handles POST /api/voice-commands/emergency.
func (h *VoiceHandler) Emergency(w http.ResponseWriter, r *http.Request) {
	var req dto.VoiceEmergencyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeVoiceCommandRequired(w)
		return
	}

	res, err := h.svc.ProcessEmergency(r.Context(), auth.UserIDFromContext(r.Context()), req.Command, service.EmergencyDetails{
		Location:    req.Location,
		MedicalInfo: req.MedicalInfo,
	})
	if err != nil {
		h.voiceError(w, r, err, "Failed to process emergency command")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Commands handles GET /api/voice-commands/commands. Public.
func (h *VoiceHandler) Commands(w http.ResponseWriter, r *http.Request) {
	commands := h.svc.Commands()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"commands": commands,
		"total":    len(commands),
	})
}

func (h *VoiceHandler) voiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, voice.ErrEmptyCommand) {
		writeVoiceCommandRequired(w)
		return
	}
	h.handleServiceError(w, r, err, fallback)
}

func writeVoiceCommandRequired(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Voice command is required")
}
