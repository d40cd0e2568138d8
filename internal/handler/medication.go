package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/handler/dto"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/service"
)

// MedicationService is the medication behaviour the handler needs.
type MedicationService interface {
	List(ctx context.Context, userID string) ([]*model.Medication, error)
	Add(ctx context.Context, userID string, in service.MedicationInput) (*model.Medication, error)
	Update(ctx context.Context, userID, id string, in service.MedicationInput) (*model.Medication, error)
	Delete(ctx context.Context, userID, id string) (*model.Medication, error)
	Track(ctx context.Context, userID string, in service.TrackInput) (*model.MedicationTracking, error)
	Compliance(ctx context.Context, userID string) (float64, error)
}

// MedicationHandler serves medication schedules and dose tracking.
type MedicationHandler struct {
	responder
	svc MedicationService
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(svc MedicationService, v *Validator, logger *slog.Logger) *MedicationHandler {
	return &MedicationHandler{responder: newResponder(logger, v), svc: svc}
}

// List handles GET /api/medications.
func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	meds, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch medications")
		return
	}
	if meds == nil {
		meds = []*model.Medication{}
	}
	writeJSON(w, http.StatusOK, dto.OK(meds))
}

// Add handles POST /api/medications/add.
func (h *MedicationHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.MedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid input values")
		return
	}

	med, err := h.svc.Add(r.Context(), auth.UserIDFromContext(r.Context()), medicationInput(req))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to add medication")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(med))
}

// Update handles PUT /api/medications/{id}.
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.MedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid input values")
		return
	}

	med, err := h.svc.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), medicationInput(req))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to update medication")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(med))
}

// Delete handles DELETE /api/medications/{id}.
func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	med, err := h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to delete medication")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(med))
}

// Track handles POST /api/medications/track.
func (h *MedicationHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid input values")
		return
	}

	tr, err := h.svc.Track(r.Context(), auth.UserIDFromContext(r.Context()), service.TrackInput{
		MedicationID:  req.MedicationID,
		ScheduledTime: req.ScheduledTime,
		Taken:         req.Taken,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to track medication")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(tr))
}

// Compliance handles GET /api/medications/compliance.
func (h *MedicationHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	pct, err := h.svc.Compliance(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to calculate compliance rate")
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(pct))
}

func medicationInput(req dto.MedicationRequest) service.MedicationInput {
	in := service.MedicationInput{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		Times:     req.Times,
		EndDate:   req.EndDate.TimePtr(),
		Notes:     req.Notes,
		Active:    req.Active,
	}
	if req.StartDate != nil {
		in.StartDate = req.StartDate.Time
	}
	return in
}
