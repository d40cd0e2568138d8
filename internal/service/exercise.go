package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// noGoal is reported when the user has no active goal.
const noGoal = "Not set"

// historyPeriods maps the period query value to a window in days.
var historyPeriods = map[string]int{
	"7days":  7,
	"30days": 30,
	"90days": 90,
}

// PeriodDays returns the window for period, 7 days when unknown.
func PeriodDays(period string) int {
	if d, ok := historyPeriods[period]; ok {
		return d
	}
	return 7
}

// ExerciseService tracks workouts, streaks and goals.
type ExerciseService struct {
	store  ExerciseStore
	logger *slog.Logger
	now    clock
}

// NewExerciseService creates a new ExerciseService.
func NewExerciseService(store ExerciseStore, logger *slog.Logger) *ExerciseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExerciseService{store: store, logger: logger, now: utcNow}
}

// Stats summarises the last seven days.
func (s *ExerciseService) Stats(ctx context.Context, userID string) (*model.ExerciseStats, error) {
	totals, err := s.store.WorkoutTotalsSince(ctx, userID, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	streak, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, err
	}
	goal, err := s.store.ActiveGoalType(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goal == "" {
		goal = noGoal
	}

	return &model.ExerciseStats{
		CaloriesBurned:    totals.CaloriesBurned,
		WorkoutsCompleted: totals.WorkoutsCompleted,
		CurrentStreak:     streak.CurrentStreak,
		LongestStreak:     streak.LongestStreak,
		CurrentGoal:       goal,
	}, nil
}

// WorkoutInput is a completed workout as reported by the client.
type WorkoutInput struct {
	WorkoutID       string
	WorkoutType     string
	CaloriesBurned  int
	DurationMinutes int
}

// CompleteWorkout records a workout and updates the streak and the weekly
// totals in one transaction.
func (s *ExerciseService) CompleteWorkout(ctx context.Context, userID string, in WorkoutInput) error {
	if strings.TrimSpace(in.WorkoutType) == "" || in.CaloriesBurned < 0 || in.DurationMinutes < 0 {
		return ErrInvalidInput
	}
	now := s.now()

	err := s.store.InTx(ctx, func(tx ExerciseStore) error {
		if err := tx.CreateWorkout(ctx, &model.Workout{
			ID:              repository.NewID(),
			UserID:          userID,
			WorkoutID:       in.WorkoutID,
			WorkoutType:     in.WorkoutType,
			CaloriesBurned:  in.CaloriesBurned,
			DurationMinutes: in.DurationMinutes,
			CompletedAt:     now,
		}); err != nil {
			return err
		}

		streak, err := tx.GetStreak(ctx, userID)
		if err != nil {
			return err
		}
		streak.UserID = userID
		streak.Advance(now)
		if err := tx.UpsertStreak(ctx, streak); err != nil {
			return err
		}

		return tx.AddWeeklyProgress(ctx, userID, model.WeekStart(now), in.CaloriesBurned, in.DurationMinutes)
	})
	if err != nil {
		return fmt.Errorf("failed to complete workout: %w", err)
	}

	s.logger.Info("workout_completed", "user_id", userID, "workout_type", in.WorkoutType)
	return nil
}

// SetGoal completes the active goal and starts a new one today.
func (s *ExerciseService) SetGoal(ctx context.Context, userID, goalType string) (*model.WorkoutGoal, error) {
	goalType = strings.TrimSpace(goalType)
	if goalType == "" {
		return nil, ErrMissingFields
	}
	now := s.now()
	y, m, d := now.Date()

	goal := &model.WorkoutGoal{
		ID:        repository.NewID(),
		UserID:    userID,
		GoalType:  goalType,
		Status:    model.GoalActive,
		StartDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
	err := s.store.InTx(ctx, func(tx ExerciseStore) error {
		if err := tx.CompleteActiveGoals(ctx, userID); err != nil {
			return err
		}
		return tx.CreateGoal(ctx, goal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set goal: %w", err)
	}
	return goal, nil
}

// CaloriesHistory returns burned calories per day over period.
func (s *ExerciseService) CaloriesHistory(ctx context.Context, userID, period string) (*model.CaloriesHistory, error) {
	days, err := s.store.CaloriesByDay(ctx, userID, s.since(period))
	if err != nil {
		return nil, err
	}

	out := &model.CaloriesHistory{History: nonNil(days)}
	for _, d := range days {
		out.Trends.TotalCalories += d.Calories
		out.Trends.TotalWorkouts += d.WorkoutCount
	}
	out.Trends.AvgCaloriesPerWorkout = ratio(out.Trends.TotalCalories, out.Trends.TotalWorkouts)
	return out, nil
}

// WorkoutHistory returns workouts per day and per type over period.
func (s *ExerciseService) WorkoutHistory(ctx context.Context, userID, period string) (*model.WorkoutHistory, error) {
	since := s.since(period)
	days, err := s.store.WorkoutsByDay(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	shares, err := s.store.WorkoutTypeDistribution(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	out := &model.WorkoutHistory{History: nonNil(days), TypeDistribution: nonNil(shares)}
	out.Stats.ActiveDays = len(days)
	for _, d := range days {
		out.Stats.TotalWorkouts += d.WorkoutCount
		out.Stats.TotalDuration += d.TotalDuration
	}
	out.Stats.AvgDuration = ratio(out.Stats.TotalDuration, out.Stats.TotalWorkouts)
	return out, nil
}

// StreakHistory returns the days with workouts over period and the streak.
func (s *ExerciseService) StreakHistory(ctx context.Context, userID, period string) (*model.StreakHistory, error) {
	days, err := s.store.WorkoutsByDay(ctx, userID, s.since(period))
	if err != nil {
		return nil, err
	}
	streak, err := s.store.GetStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &model.StreakHistory{WorkoutDays: make([]model.StreakDay, 0, len(days)), Stats: *streak}
	for _, d := range days {
		out.WorkoutDays = append(out.WorkoutDays, model.StreakDay{
			Date:         d.Date,
			WorkoutCount: d.WorkoutCount,
			WorkoutTypes: d.WorkoutTypes,
		})
	}
	return out, nil
}

func (s *ExerciseService) since(period string) time.Time {
	return s.now().AddDate(0, 0, -PeriodDays(period))
}

// ratio divides and rounds to two decimals, 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*100) / 100
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
