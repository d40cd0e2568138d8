package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evansachie/lifeguard/internal/healthtips"
)

// HealthTipsSource is the aggregated MyHealthfinder feed.
// *healthtips.Aggregator implements it.
type HealthTipsSource interface {
	Tips(ctx context.Context) healthtips.Response
	Topics(ctx context.Context) (json.RawMessage, error)
	Topic(ctx context.Context, id string) (healthtips.Tip, error)
}

// HealthTipsHandler serves the public health tips routes.
type HealthTipsHandler struct {
	responder
	src HealthTipsSource
}

// NewHealthTipsHandler creates a new HealthTipsHandler.
func NewHealthTipsHandler(src HealthTipsSource, logger *slog.Logger) *HealthTipsHandler {
	return &HealthTipsHandler{responder: newResponder(logger, nil), src: src}
}

// Tips handles GET /api/health-tips. It always answers 200; upstream
// failures are served from the fallback set.
func (h *HealthTipsHandler) Tips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.src.Tips(r.Context()))
}

// Topics handles GET /api/health-tips/topics.
func (h *HealthTipsHandler) Topics(w http.ResponseWriter, r *http.Request) {
	raw, err := h.src.Topics(r.Context())
	if err != nil {
		h.internalError(w, r, err, "Failed to fetch topics")
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

// Topic handles GET /api/health-tips/topic/{id}.
func (h *HealthTipsHandler) Topic(w http.ResponseWriter, r *http.Request) {
	tip, err := h.src.Topic(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, healthtips.ErrTopicNotFound) {
		writeError(w, http.StatusNotFound, "TOPIC_NOT_FOUND", "Topic not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "Failed to fetch topic details")
		return
	}
	writeJSON(w, http.StatusOK, tip)
}
