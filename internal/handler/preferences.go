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

// PreferenceService is the preference behaviour the handler needs.
// *service.PreferenceService implements it.
type PreferenceService interface {
	Emergency(ctx context.Context, userID string) (model.EmergencyPreferences, error)
	UpdateEmergency(ctx context.Context, userID string, in service.EmergencyUpdate) (model.EmergencyPreferences, error)
	Notifications(ctx context.Context, userID string) (model.NotificationPreferences, error)
	UpdateNotifications(ctx context.Context, userID string, in service.NotificationUpdate) (model.NotificationPreferences, error)
	SendTestNotification(ctx context.Context, userID, email, userName string) error
}

// PreferenceHandler serves emergency and notification preferences.
type PreferenceHandler struct {
	responder
	svc             PreferenceService
	emailConfigured bool
}

// NewPreferenceHandler creates a new PreferenceHandler. emailConfigured
// reports whether outgoing mail is delivered or only logged.
func NewPreferenceHandler(svc PreferenceService, emailConfigured bool, v *Validator, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{responder: newResponder(logger, v), svc: svc, emailConfigured: emailConfigured}
}

// Emergency handles GET /api/emergency-preferences.
func (h *PreferenceHandler) Emergency(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Emergency(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch emergency preferences")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(p))
}

// UpdateEmergency handles PUT /api/emergency-preferences.
func (h *PreferenceHandler) UpdateEmergency(w http.ResponseWriter, r *http.Request) {
	var req dto.EmergencyPreferencesRequest
	if !h.bind(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateEmergency(r.Context(), auth.UserIDFromContext(r.Context()), service.EmergencyUpdate{
		SendToEmergencyContacts: req.SendToEmergencyContacts,
		SendToAmbulanceService:  req.SendToAmbulanceService,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to update emergency preferences")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(p))
}

// Notifications handles GET /api/user-preferences/notifications.
func (h *PreferenceHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Notifications(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch preferences")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(p))
}

// UpdateNotifications handles PUT /api/user-preferences/notifications.
func (h *PreferenceHandler) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var req dto.NotificationPreferencesRequest
	if !h.bind(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateNotifications(r.Context(), auth.UserIDFromContext(r.Context()), service.NotificationUpdate{
		EmailNotifications: req.EmailNotifications,
		ReminderLeadTime:   req.ReminderLeadTime,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to update preferences")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(p))
}

// SendTestNotification handles POST /api/user-preferences/notifications/test.
// The email goes to the address on the token.
func (h *PreferenceHandler) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
		return
	}

	if err := h.svc.SendTestNotification(r.Context(), p.UserID, p.Email, p.Name); err != nil {
		h.handleServiceError(w, r, err, "Failed to send test email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Test email sent (if email notifications are enabled and email is valid).",
	})
}

// NotificationsHealth handles GET /api/notifications/health. Public.
func (h *PreferenceHandler) NotificationsHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"emailConfigured": h.emailConfigured,
	})
}
