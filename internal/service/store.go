package service

import (
	"context"
	"time"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// MemoStore persists memos.
type MemoStore interface {
	ListMemos(ctx context.Context, userID string) ([]*model.Memo, error)
	CountUndoneMemos(ctx context.Context, userID string) (int, error)
	CreateMemo(ctx context.Context, memo *model.Memo) error
	UpdateMemoText(ctx context.Context, userID, id, text string) (*model.Memo, error)
	SetMemoDone(ctx context.Context, userID, id string, done bool) (*model.Memo, error)
	DeleteMemo(ctx context.Context, userID, id string) error
}

// SettingsStore persists user settings.
type SettingsStore interface {
	GetOrCreateSettings(ctx context.Context, userID string) (*model.Settings, error)
	UpsertSettings(ctx context.Context, s *model.Settings) error
}

// CalorieStore persists calculator inputs and results.
type CalorieStore interface {
	UpsertMeasurement(ctx context.Context, m *model.Measurement) error
	CreateCalorieCalculation(ctx context.Context, c *model.CalorieCalculation) error
	ListCalorieCalculations(ctx context.Context, userID string, limit int) ([]*model.CalorieCalculation, error)
	InTx(ctx context.Context, fn func(CalorieStore) error) error
}

// UserStore reads and mirrors users of the auth service.
type UserStore interface {
	UpsertUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ContactStore persists contacts, alerts and the data an alert needs.
type ContactStore interface {
	ListContacts(ctx context.Context, userID string) ([]*model.EmergencyContact, error)
	GetContact(ctx context.Context, userID, id string) (*model.EmergencyContact, error)
	GetContactByID(ctx context.Context, id string) (*model.EmergencyContact, error)
	CreateContact(ctx context.Context, c *model.EmergencyContact) error
	UpdateContact(ctx context.Context, c *model.EmergencyContact, resetVerification bool) (*model.EmergencyContact, error)
	MarkContactVerified(ctx context.Context, id string) error
	DeleteContact(ctx context.Context, userID, id string) error

	CreateAlert(ctx context.Context, a *model.EmergencyAlert) error
	RecordContactAlert(ctx context.Context, ca *model.ContactAlert) error
	ListAlerts(ctx context.Context, userID string, limit int) ([]*model.EmergencyAlert, error)
	ResolveAlert(ctx context.Context, userID, id string) (*model.EmergencyAlert, error)
	AcknowledgeContactAlert(ctx context.Context, alertID, contactID string) error

	GetEmergencyPreferences(ctx context.Context, userID string) (model.EmergencyPreferences, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// PreferenceStore persists emergency and notification preferences.
type PreferenceStore interface {
	GetEmergencyPreferences(ctx context.Context, userID string) (model.EmergencyPreferences, error)
	UpsertEmergencyPreferences(ctx context.Context, userID string, p model.EmergencyPreferences) error
	GetNotificationPreferences(ctx context.Context, userID string) (model.NotificationPreferences, error)
	UpsertNotificationPreferences(ctx context.Context, userID string, p model.NotificationPreferences) error
}

// SoundStore persists favorite sounds.
type SoundStore interface {
	UpsertFavoriteSound(ctx context.Context, s *model.FavoriteSound) error
	ListFavoriteSounds(ctx context.Context, userID string) ([]*model.FavoriteSound, error)
	DeleteFavoriteSound(ctx context.Context, userID, soundID string) error
}

// ExerciseStore persists workouts, streaks and goals.
type ExerciseStore interface {
	WorkoutTotalsSince(ctx context.Context, userID string, since time.Time) (repository.WeeklyTotals, error)
	CreateWorkout(ctx context.Context, w *model.Workout) error
	GetStreak(ctx context.Context, userID string) (*model.Streak, error)
	UpsertStreak(ctx context.Context, s *model.Streak) error
	AddWeeklyProgress(ctx context.Context, userID string, weekStart time.Time, calories, minutes int) error
	ActiveGoalType(ctx context.Context, userID string) (string, error)
	CompleteActiveGoals(ctx context.Context, userID string) error
	CreateGoal(ctx context.Context, g *model.WorkoutGoal) error
	CaloriesByDay(ctx context.Context, userID string, since time.Time) ([]model.CaloriesDay, error)
	WorkoutsByDay(ctx context.Context, userID string, since time.Time) ([]model.WorkoutDay, error)
	WorkoutTypeDistribution(ctx context.Context, userID string, since time.Time) ([]model.WorkoutTypeShare, error)
	InTx(ctx context.Context, fn func(ExerciseStore) error) error
}

// HealthStore persists health metrics, sensor readings and profiles.
type HealthStore interface {
	CreateHealthMetric(ctx context.Context, m *model.HealthMetric) error
	LatestHealthMetric(ctx context.Context, userID string) (*model.HealthMetric, error)
	ListHealthMetrics(ctx context.Context, userID string, limit int) ([]*model.HealthMetric, error)
	CreateSensorReading(ctx context.Context, s *model.SensorReading) error
	LatestSensorReading(ctx context.Context, userID string) (*model.SensorReading, error)
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfileMeasurements(ctx context.Context, userID string, age int, weight, height float64, gender string) error
}

// MedicationStore persists medication schedules and dose tracking.
type MedicationStore interface {
	ListMedications(ctx context.Context, userID string) ([]*model.Medication, error)
	GetMedication(ctx context.Context, userID, id string) (*model.Medication, error)
	CreateMedication(ctx context.Context, m *model.Medication) error
	UpdateMedication(ctx context.Context, m *model.Medication) (*model.Medication, error)
	ReplaceReminders(ctx context.Context, userID, medicationID string, times []string) error
	DeleteMedication(ctx context.Context, userID, id string) (*model.Medication, error)
	CreateTracking(ctx context.Context, t *model.MedicationTracking) error
	DoseCountsSince(ctx context.Context, userID string, since time.Time) (taken, total int, err error)
	InTx(ctx context.Context, fn func(MedicationStore) error) error
}

// calorieRepo, exerciseRepo and medicationRepo bind the transactional
// stores to a repository, rebinding to the tx-scoped repository in InTx.
type calorieRepo struct{ *repository.Repository }

// NewCalorieStore adapts repo to CalorieStore.
func NewCalorieStore(repo *repository.Repository) CalorieStore { return calorieRepo{repo} }

func (r calorieRepo) InTx(ctx context.Context, fn func(CalorieStore) error) error {
	return r.WithTx(ctx, func(tx *repository.Repository) error { return fn(calorieRepo{tx}) })
}

type exerciseRepo struct{ *repository.Repository }

// NewExerciseStore adapts repo to ExerciseStore.
func NewExerciseStore(repo *repository.Repository) ExerciseStore { return exerciseRepo{repo} }

func (r exerciseRepo) InTx(ctx context.Context, fn func(ExerciseStore) error) error {
	return r.WithTx(ctx, func(tx *repository.Repository) error { return fn(exerciseRepo{tx}) })
}

type medicationRepo struct{ *repository.Repository }

// NewMedicationStore adapts repo to MedicationStore.
func NewMedicationStore(repo *repository.Repository) MedicationStore { return medicationRepo{repo} }

func (r medicationRepo) InTx(ctx context.Context, fn func(MedicationStore) error) error {
	return r.WithTx(ctx, func(tx *repository.Repository) error { return fn(medicationRepo{tx}) })
}
