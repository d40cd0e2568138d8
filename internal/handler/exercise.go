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

// ExerciseService is the exercise tracking behaviour the handler needs.
type ExerciseService interface {
	Stats(ctx context.Context, userID string) (*model.ExerciseStats, error)
	CompleteWorkout(ctx context.Context, userID string, in service.WorkoutInput) error
	SetGoal(ctx context.Context, userID, goalType string) (*model.WorkoutGoal, error)
	CaloriesHistory(ctx context.Context, userID, period string) (*model.CaloriesHistory, error)
	WorkoutHistory(ctx context.Context, userID, period string) (*model.WorkoutHistory, error)
	StreakHistory(ctx context.Context, userID, period string) (*model.StreakHistory, error)
}

// ExerciseHandler serves workout tracking.
type ExerciseHandler struct {
	responder
	svc ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(svc ExerciseService, v *Validator, logger *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{responder: newResponder(logger, v), svc: svc}
}

// Stats handles GET /api/exercise/stats.
func (h *ExerciseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Complete handles POST /api/exercise/complete.
func (h *ExerciseHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req dto.WorkoutRequest
	if !h.bind(w, r, &req) {
		return
	}

	err := h.svc.CompleteWorkout(r.Context(), auth.UserIDFromContext(r.Context()), service.WorkoutInput{
		WorkoutID:       req.WorkoutID,
		WorkoutType:     req.WorkoutType,
		CaloriesBurned:  req.CaloriesBurned.Int(),
		DurationMinutes: req.DurationMinutes.Int(),
	})
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Workout completed successfully"})
}

// SetGoal handles POST /api/exercise/goals.
func (h *ExerciseHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	var req dto.GoalRequest
	if !h.bind(w, r, &req) {
		return
	}

	goal, err := h.svc.SetGoal(r.Context(), auth.UserIDFromContext(r.Context()), req.GoalType)
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// CaloriesHistory handles GET /api/exercise/calories-history?period=.
func (h *ExerciseHandler) CaloriesHistory(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CaloriesHistory(r.Context(), auth.UserIDFromContext(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// WorkoutHistory handles GET /api/exercise/workout-history?period=.
func (h *ExerciseHandler) WorkoutHistory(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.WorkoutHistory(r.Context(), auth.UserIDFromContext(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// StreakHistory handles GET /api/exercise/streak-history?period=.
func (h *ExerciseHandler) StreakHistory(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.StreakHistory(r.Context(), auth.UserIDFromContext(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		h.handleServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
