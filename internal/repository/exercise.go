package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evansachie/lifeguard/internal/model"
)

// WeeklyTotals aggregates workouts over a trailing window.
type WeeklyTotals struct {
	CaloriesBurned    int
	WorkoutsCompleted int
}

// WorkoutTotalsSince sums calories and counts workouts completed after since.
func (r *Repository) WorkoutTotalsSince(ctx context.Context, userID string, since time.Time) (WeeklyTotals, error) {
	query := `
		SELECT COALESCE(SUM(calories_burned), 0), COUNT(*)
		FROM user_workouts
		WHERE user_id = $1 AND completed_at >= $2
	`

	var t WeeklyTotals
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&t.CaloriesBurned, &t.WorkoutsCompleted); err != nil {
		return WeeklyTotals{}, fmt.Errorf("failed to total workouts: %w", err)
	}
	return t, nil
}

// CreateWorkout inserts a completed workout.
func (r *Repository) CreateWorkout(ctx context.Context, w *model.Workout) error {
	query := `
		INSERT INTO user_workouts (id, user_id, workout_id, workout_type, calories_burned, duration_minutes, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		w.ID,
		w.UserID,
		w.WorkoutID,
		w.WorkoutType,
		w.CaloriesBurned,
		w.DurationMinutes,
		w.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}
	return nil
}

// GetStreak returns the user's streak, or a zero streak when none exists.
// Inside a transaction the row is locked until commit.
func (r *Repository) GetStreak(ctx context.Context, userID string) (*model.Streak, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_workout_date
		FROM workout_streaks
		WHERE user_id = $1
	`
	if _, inTx := r.db.(pgx.Tx); inTx {
		query += ` FOR UPDATE`
	}

	var s model.Streak
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak, &s.LastWorkoutDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Streak{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return &s, nil
}

// UpsertStreak writes the user's streak.
func (r *Repository) UpsertStreak(ctx context.Context, s *model.Streak) error {
	query := `
		INSERT INTO workout_streaks (user_id, current_streak, longest_streak, last_workout_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET current_streak = EXCLUDED.current_streak,
		    longest_streak = EXCLUDED.longest_streak,
		    last_workout_date = EXCLUDED.last_workout_date
	`
	if _, err := r.db.Exec(ctx, query, s.UserID, s.CurrentStreak, s.LongestStreak, s.LastWorkoutDate); err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// AddWeeklyProgress accumulates one workout into its week's totals.
func (r *Repository) AddWeeklyProgress(ctx context.Context, userID string, weekStart time.Time, calories, minutes int) error {
	query := `
		INSERT INTO weekly_progress (user_id, week_start, workouts_completed, calories_burned, total_minutes)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (user_id, week_start) DO UPDATE
		SET workouts_completed = weekly_progress.workouts_completed + 1,
		    calories_burned = weekly_progress.calories_burned + EXCLUDED.calories_burned,
		    total_minutes = weekly_progress.total_minutes + EXCLUDED.total_minutes
	`
	if _, err := r.db.Exec(ctx, query, userID, weekStart, calories, minutes); err != nil {
		return fmt.Errorf("failed to update weekly progress: %w", err)
	}
	return nil
}

// ActiveGoalType returns the type of the user's active goal, or "" when unset.
func (r *Repository) ActiveGoalType(ctx context.Context, userID string) (string, error) {
	query := `
		SELECT goal_type FROM workout_goals
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var goal string
	err := r.db.QueryRow(ctx, query, userID).Scan(&goal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get active goal: %w", err)
	}
	return goal, nil
}

// CompleteActiveGoals closes every active goal of the user.
func (r *Repository) CompleteActiveGoals(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `UPDATE workout_goals SET status = 'completed' WHERE user_id = $1 AND status = 'active'`, userID); err != nil {
		return fmt.Errorf("failed to complete goals: %w", err)
	}
	return nil
}

// CreateGoal inserts an active goal starting today.
func (r *Repository) CreateGoal(ctx context.Context, g *model.WorkoutGoal) error {
	query := `
		INSERT INTO workout_goals (id, user_id, goal_type, status, start_date)
		VALUES ($1, $2, $3, 'active', CURRENT_DATE)
		RETURNING status, start_date, created_at
	`
	if err := r.db.QueryRow(ctx, query, g.ID, g.UserID, g.GoalType).Scan(&g.Status, &g.StartDate, &g.CreatedAt); err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// CaloriesByDay groups burned calories by completion date since the given day.
func (r *Repository) CaloriesByDay(ctx context.Context, userID string, since time.Time) ([]model.CaloriesDay, error) {
	query := `
		SELECT DATE(completed_at) AS day,
		       COALESCE(SUM(calories_burned), 0),
		       ARRAY_AGG(DISTINCT workout_type),
		       COUNT(*)
		FROM user_workouts
		WHERE user_id = $1 AND completed_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query calories history: %w", err)
	}
	defer rows.Close()

	out := make([]model.CaloriesDay, 0)
	for rows.Next() {
		var d model.CaloriesDay
		if err := rows.Scan(&d.Date, &d.Calories, &d.WorkoutTypes, &d.WorkoutCount); err != nil {
			return nil, fmt.Errorf("failed to scan calories history: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// WorkoutsByDay groups workouts by completion date since the given day.
func (r *Repository) WorkoutsByDay(ctx context.Context, userID string, since time.Time) ([]model.WorkoutDay, error) {
	query := `
		SELECT DATE(completed_at) AS day,
		       COUNT(*),
		       ARRAY_AGG(DISTINCT workout_type),
		       COALESCE(SUM(duration_minutes), 0),
		       COALESCE(SUM(calories_burned), 0)
		FROM user_workouts
		WHERE user_id = $1 AND completed_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query workout history: %w", err)
	}
	defer rows.Close()

	out := make([]model.WorkoutDay, 0)
	for rows.Next() {
		var d model.WorkoutDay
		if err := rows.Scan(&d.Date, &d.WorkoutCount, &d.WorkoutTypes, &d.TotalDuration, &d.TotalCalories); err != nil {
			return nil, fmt.Errorf("failed to scan workout history: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// WorkoutTypeDistribution groups workouts by type since the given day.
func (r *Repository) WorkoutTypeDistribution(ctx context.Context, userID string, since time.Time) ([]model.WorkoutTypeShare, error) {
	query := `
		SELECT workout_type,
		       COUNT(*),
		       COALESCE(SUM(duration_minutes), 0),
		       COALESCE(AVG(duration_minutes), 0)::float8,
		       COALESCE(SUM(calories_burned), 0)
		FROM user_workouts
		WHERE user_id = $1 AND completed_at >= $2
		GROUP BY workout_type
		ORDER BY COUNT(*) DESC, workout_type ASC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query workout distribution: %w", err)
	}
	defer rows.Close()

	out := make([]model.WorkoutTypeShare, 0)
	for rows.Next() {
		var s model.WorkoutTypeShare
		if err := rows.Scan(&s.WorkoutType, &s.Count, &s.TotalDuration, &s.AvgDuration, &s.TotalCalories); err != nil {
			return nil, fmt.Errorf("failed to scan workout distribution: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
