package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/handler/dto"
	"github.com/evansachie/lifeguard/internal/model"
)

// MemoService is the memo behaviour the handler needs.
// *service.MemoService implements it.
type MemoService interface {
	List(ctx context.Context, userID string) ([]*model.Memo, error)
	CountUndone(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, userID, text string) (*model.Memo, error)
	UpdateText(ctx context.Context, userID, id, text string) (*model.Memo, error)
	SetDone(ctx context.Context, userID, id string, done bool) (*model.Memo, error)
	Delete(ctx context.Context, userID, id string) error
}

// MemoHandler handles HTTP requests for memos.
type MemoHandler struct {
	responder
	svc MemoService
}

// NewMemoHandler creates a new MemoHandler.
func NewMemoHandler(svc MemoService, v *Validator, logger *slog.Logger) *MemoHandler {
	return &MemoHandler{responder: newResponder(logger, v), svc: svc}
}

// List handles GET /api/memos.
func (h *MemoHandler) List(w http.ResponseWriter, r *http.Request) {
	memos, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, memos)
}

// CountUndone handles GET /api/memos/undone/count.
func (h *MemoHandler) CountUndone(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CountUndone(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// Create handles POST /api/memos.
func (h *MemoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.MemoRequest
	if !h.bind(w, r, &req) {
		return
	}

	memo, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), req.Memo)
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, memo)
}

// Update handles PUT /api/memos/{id}.
func (h *MemoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.MemoRequest
	if !h.bind(w, r, &req) {
		return
	}

	memo, err := h.svc.UpdateText(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Memo)
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

// SetDone handles PUT /api/memos/{id}/done.
func (h *MemoHandler) SetDone(w http.ResponseWriter, r *http.Request) {
	var req dto.MemoDoneRequest
	if !h.bind(w, r, &req) {
		return
	}
	if req.Done == nil {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields")
		return
	}

	memo, err := h.svc.SetDone(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), *req.Done)
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

// Delete handles DELETE /api/memos/{id}.
func (h *MemoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Memo deleted successfully"})
}
