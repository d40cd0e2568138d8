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

// SoundService is the favorite sounds behaviour the handler needs.
type SoundService interface {
	Add(ctx context.Context, authUserID string, sound *model.FavoriteSound) error
	List(ctx context.Context, authUserID, userID string) ([]*model.FavoriteSound, error)
	Remove(ctx context.Context, authUserID, userID, soundID string) error
}

// SoundHandler serves favorite relaxation sounds.
type SoundHandler struct {
	responder
	svc SoundService
}

// NewSoundHandler creates a new SoundHandler.
func NewSoundHandler(svc SoundService, v *Validator, logger *slog.Logger) *SoundHandler {
	return &SoundHandler{responder: newResponder(logger, v), svc: svc}
}

// Add handles POST /api/favorite-sounds.
func (h *SoundHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.FavoriteSoundRequest
	if !h.bind(w, r, &req) {
		return
	}

	sound := &model.FavoriteSound{
		UserID:     req.UserID,
		SoundID:    req.SoundID,
		SoundName:  req.SoundName,
		SoundURL:   req.SoundURL,
		PreviewURL: req.PreviewURL,
		Category:   req.Category,
		Duration:   req.Duration.Float(),
	}
	if err := h.svc.Add(r.Context(), auth.UserIDFromContext(r.Context()), sound); err != nil {
		h.handleServiceError(w, r, err, "Failed to add favorite")
		return
	}
	writeJSON(w, http.StatusCreated, sound)
}

// List handles GET /api/favorite-sounds/{userId}.
func (h *SoundHandler) List(w http.ResponseWriter, r *http.Request) {
	sounds, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch favorites")
		return
	}
	writeJSON(w, http.StatusOK, sounds)
}

// Remove handles DELETE /api/favorite-sounds/{userId}/{soundId}.
func (h *SoundHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Remove(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "userId"), chi.URLParam(r, "soundId"))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Favorite removed successfully"})
}
