package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/handler/dto"
	"github.com/evansachie/lifeguard/internal/model"
)

// SettingsService is the settings behaviour the handler needs.
type SettingsService interface {
	Get(ctx context.Context, userID string) (*model.Settings, error)
	Update(ctx context.Context, settings *model.Settings) (*model.Settings, error)
}

// SettingsHandler serves per-user app settings.
type SettingsHandler struct {
	responder
	svc SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc SettingsService, v *Validator, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{responder: newResponder(logger, v), svc: svc}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsRequest
	if !h.bind(w, r, &req) {
		return
	}

	_, err := h.svc.Update(r.Context(), &model.Settings{
		UserID:              auth.UserIDFromContext(r.Context()),
		CampaignName:        req.CampaignName,
		DayEndTime:          req.DayEndTime,
		NotificationEnabled: req.NotificationEnabled,
		MeasurementUnit:     req.MeasurementUnit,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "User settings updated successfully"})
}
