package model

import "time"

// Goal states.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
)

// Workout is one completed workout session.
type Workout struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	WorkoutID       string    `json:"workout_id"`
	WorkoutType     string    `json:"workout_type"`
	CaloriesBurned  int       `json:"calories_burned"`
	DurationMinutes int       `json:"duration_minutes"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Streak tracks consecutive workout days.
type Streak struct {
	UserID          string     `json:"user_id"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastWorkoutDate *time.Time `json:"last_workout_date"`
}

// Advance applies a workout on day to the streak. Days are compared as
// UTC calendar dates.
func (s *Streak) Advance(day time.Time) {
	today := truncateDay(day)
	switch {
	case s.LastWorkoutDate == nil:
		s.CurrentStreak = 1
	default:
		gap := int(today.Sub(truncateDay(*s.LastWorkoutDate)).Hours() / 24)
		switch {
		case gap == 0:
			if s.CurrentStreak < 1 {
				s.CurrentStreak = 1
			}
		case gap == 1:
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
	}
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastWorkoutDate = &today
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Sunday that starts t's week.
func WeekStart(t time.Time) time.Time {
	day := truncateDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WorkoutGoal is a user's training goal.
type WorkoutGoal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GoalType  string    `json:"goal_type"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	CreatedAt time.Time `json:"created_at"`
}

// ExerciseStats is the dashboard summary for the last seven days.
type ExerciseStats struct {
	CaloriesBurned    int    `json:"caloriesBurned"`
	WorkoutsCompleted int    `json:"workoutsCompleted"`
	CurrentStreak     int    `json:"currentStreak"`
	LongestStreak     int    `json:"longestStreak"`
	CurrentGoal       string `json:"currentGoal"`
}

// CaloriesDay aggregates one day of burned calories.
type CaloriesDay struct {
	Date         time.Time `json:"date"`
	Calories     int       `json:"calories"`
	WorkoutTypes []string  `json:"workout_types"`
	WorkoutCount int       `json:"workout_count"`
}

// CaloriesTrends summarises a calories history window.
type CaloriesTrends struct {
	AvgCaloriesPerWorkout float64 `json:"avg_calories_per_workout"`
	TotalCalories         int     `json:"total_calories"`
	TotalWorkouts         int     `json:"total_workouts"`
}

// CaloriesHistory is the response shape of the calories history endpoint.
type CaloriesHistory struct {
	History []CaloriesDay  `json:"history"`
	Trends  CaloriesTrends `json:"trends"`
}

// WorkoutDay aggregates one day of workouts.
type WorkoutDay struct {
	Date          time.Time `json:"date"`
	WorkoutCount  int       `json:"workout_count"`
	WorkoutTypes  []string  `json:"workout_types"`
	TotalDuration int       `json:"total_duration"`
	TotalCalories int       `json:"total_calories"`
}

// WorkoutTypeShare is one row of the workout type distribution.
type WorkoutTypeShare struct {
	WorkoutType   string  `json:"workout_type"`
	Count         int     `json:"count"`
	TotalDuration int     `json:"total_duration"`
	AvgDuration   float64 `json:"avg_duration"`
	TotalCalories int     `json:"total_calories"`
}

// WorkoutSummary totals a workout history window.
type WorkoutSummary struct {
	ActiveDays    int     `json:"active_days"`
	TotalWorkouts int     `json:"total_workouts"`
	AvgDuration   float64 `json:"avg_duration"`
	TotalDuration int     `json:"total_duration"`
}

// WorkoutHistory is the response shape of the workout history endpoint.
type WorkoutHistory struct {
	History          []WorkoutDay       `json:"history"`
	TypeDistribution []WorkoutTypeShare `json:"typeDistribution"`
	Stats            WorkoutSummary     `json:"stats"`
}

// StreakDay is a day with at least one workout.
type StreakDay struct {
	Date         time.Time `json:"date"`
	WorkoutCount int       `json:"workout_count"`
	WorkoutTypes []string  `json:"workout_types"`
}

// StreakHistory is the response shape of the streak history endpoint.
type StreakHistory struct {
	WorkoutDays []StreakDay `json:"workoutDays"`
	Stats       Streak      `json:"stats"`
}
