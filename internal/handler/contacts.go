package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/handler/dto"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/service"
)

// ContactService is the emergency contact and alert behaviour the handler
// needs. *service.ContactService implements it.
type ContactService interface {
	List(ctx context.Context, userID string) ([]*model.EmergencyContact, error)
	Create(ctx context.Context, userID string, in service.ContactInput) (*model.EmergencyContact, error)
	Update(ctx context.Context, userID, id string, in service.ContactInput) (*model.EmergencyContact, error)
	Delete(ctx context.Context, userID, id string) error
	Verify(ctx context.Context, token string) (*model.EmergencyContact, error)
	SendTestAlert(ctx context.Context, userID, contactID string) (service.TestAlertResult, error)
	RaiseAlert(ctx context.Context, userID string, in service.AlertInput) (*service.AlertResult, error)
	Alerts(ctx context.Context, userID string) ([]*model.EmergencyAlert, error)
	ResolveAlert(ctx context.Context, userID, alertID string) (*model.EmergencyAlert, error)
	Acknowledge(ctx context.Context, alertID, contactID, sig string) error
}

// ContactHandler handles emergency contacts and alerts.
type ContactHandler struct {
	responder
	svc ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc ContactService, v *Validator, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{responder: newResponder(logger, v), svc: svc}
}

// List handles GET /api/emergency-contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch emergency contacts")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// Create handles POST /api/emergency-contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ContactRequest
	if !h.bind(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), contactInput(req))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to create emergency contact")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update handles PUT /api/emergency-contacts/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.ContactRequest
	if !h.bind(w, r, &req) {
		return
	}

	c, err := h.svc.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), contactInput(req))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to update emergency contact")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/emergency-contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err, "Failed to delete emergency contact")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Contact deleted successfully"})
}

// Verify handles GET /api/emergency-contacts/verify?token=. Public.
func (h *ContactHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "Invalid verification token")
		return
	}

	if _, err := h.svc.Verify(r.Context(), token); err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Contact verified successfully",
	})
}

// RaiseAlert handles POST /api/emergency-contacts/alert.
func (h *ContactHandler) RaiseAlert(w http.ResponseWriter, r *http.Request) {
	var req dto.AlertRequest
	if !h.bind(w, r, &req) {
		return
	}

	res, err := h.svc.RaiseAlert(r.Context(), auth.UserIDFromContext(r.Context()), service.AlertInput{
		Message:     req.Message,
		Location:    req.Location,
		MedicalInfo: req.MedicalInfo,
	})
	if errors.Is(err, service.ErrNoEmergencyContacts) {
		writeJSON(w, http.StatusNotFound, service.AlertResult{
			Success:    false,
			Message:    "No emergency contacts found",
			AlertsSent: []service.AlertDelivery{},
		})
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to send emergency alert")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SendTestAlert handles POST /api/emergency-contacts/test-alert/{id}.
func (h *ContactHandler) SendTestAlert(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SendTestAlert(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to send test alert")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Alerts handles GET /api/emergency-contacts/alerts.
func (h *ContactHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.Alerts(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch alert history")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// ResolveAlert handles PUT /api/emergency-contacts/alerts/{id}/resolve.
func (h *ContactHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.ResolveAlert(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to resolve alert")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Acknowledge handles GET /api/emergency-contacts/alerts/{id}/acknowledge.
// Public; the link is HMAC signed.
func (h *ContactHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.svc.Acknowledge(r.Context(), chi.URLParam(r, "id"), q.Get("contact"), q.Get("sig")); err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Alert acknowledged",
	})
}

func contactInput(req dto.ContactRequest) service.ContactInput {
	return service.ContactInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Relationship: req.Relationship,
		Priority:     req.Priority,
		Role:         req.Role,
	}
}
