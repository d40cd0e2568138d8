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

// CalorieService is the calculator behaviour the handler needs.
type CalorieService interface {
	Calculate(ctx context.Context, userID string, in service.CalorieInput) (service.CalorieResult, error)
	History(ctx context.Context, userID string) ([]*model.CalorieCalculation, error)
}

// CalorieHandler serves the BMR/TDEE calculator.
type CalorieHandler struct {
	responder
	svc CalorieService
}

// NewCalorieHandler creates a new CalorieHandler.
func NewCalorieHandler(svc CalorieService, v *Validator, logger *slog.Logger) *CalorieHandler {
	return &CalorieHandler{responder: newResponder(logger, v), svc: svc}
}

// Calculate handles POST /api/bmr-calculator/calculate.
func (h *CalorieHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req dto.CalculatorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid input values")
		return
	}

	res, err := h.svc.Calculate(r.Context(), auth.UserIDFromContext(r.Context()), service.CalorieInput{
		Age:           req.Age.Float(),
		Weight:        req.Weight.Float(),
		Height:        req.Height.Float(),
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// History handles GET /api/bmr-calculator/history.
func (h *CalorieHandler) History(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.History(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
