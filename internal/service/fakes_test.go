package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/notify"
	"github.com/evansachie/lifeguard/internal/repository"
)

var errBoom = errors.New("boom")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory stand-in for the repository.
type fakeStore struct {
	mu sync.Mutex

	memos        map[string]*model.Memo
	settings     map[string]*model.Settings
	measurements map[string]*model.Measurement
	calcs        []*model.CalorieCalculation
	users        map[string]*model.User
	profiles     map[string]*model.UserProfile
	contacts     map[string]*model.EmergencyContact
	alerts       map[string]*model.EmergencyAlert
	contactAlert []*model.ContactAlert
	emergency    map[string]model.EmergencyPreferences
	notification map[string]model.NotificationPreferences
	sounds       map[string]*model.FavoriteSound
	workouts     []*model.Workout
	streaks      map[string]*model.Streak
	weekly       map[string]int
	goals        []*model.WorkoutGoal
	metrics      []*model.HealthMetric
	readings     []*model.SensorReading
	meds         map[string]*model.Medication
	reminders    map[string][]string
	tracking     []*model.MedicationTracking

	caloriesByDay []model.CaloriesDay
	workoutsByDay []model.WorkoutDay
	typeShares    []model.WorkoutTypeShare

	// failOn makes the named method return errBoom.
	failOn string
	// committed counts InTx calls whose fn returned nil.
	committed int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		memos:        map[string]*model.Memo{},
		settings:     map[string]*model.Settings{},
		measurements: map[string]*model.Measurement{},
		users:        map[string]*model.User{},
		profiles:     map[string]*model.UserProfile{},
		contacts:     map[string]*model.EmergencyContact{},
		alerts:       map[string]*model.EmergencyAlert{},
		emergency:    map[string]model.EmergencyPreferences{},
		notification: map[string]model.NotificationPreferences{},
		sounds:       map[string]*model.FavoriteSound{},
		streaks:      map[string]*model.Streak{},
		weekly:       map[string]int{},
		meds:         map[string]*model.Medication{},
		reminders:    map[string][]string{},
	}
}

func (f *fakeStore) fail(method string) error {
	if f.failOn == method {
		return errBoom
	}
	return nil
}

// inTx runs fn and counts the commit. The fake keeps writes made before a
// failure, so tests assert on the returned error rather than on rollback.
func (f *fakeStore) inTx(fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	f.mu.Lock()
	f.committed++
	f.mu.Unlock()
	return nil
}

// Memos.

func (f *fakeStore) ListMemos(_ context.Context, userID string) ([]*model.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Memo{}
	for _, m := range f.memos {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) CountUndoneMemos(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.memos {
		if m.UserID == userID && !m.Done {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateMemo(_ context.Context, memo *model.Memo) error {
	if err := f.fail("CreateMemo"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	memo.CreatedAt = time.Now().Add(time.Duration(len(f.memos)) * time.Millisecond)
	memo.UpdatedAt = memo.CreatedAt
	f.memos[memo.ID] = memo
	return nil
}

func (f *fakeStore) ownedMemo(userID, id string) (*model.Memo, error) {
	m, ok := f.memos[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrMemoNotFound
	}
	return m, nil
}

func (f *fakeStore) UpdateMemoText(_ context.Context, userID, id, text string) (*model.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.ownedMemo(userID, id)
	if err != nil {
		return nil, err
	}
	m.Memo = text
	return m, nil
}

func (f *fakeStore) SetMemoDone(_ context.Context, userID, id string, done bool) (*model.Memo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.ownedMemo(userID, id)
	if err != nil {
		return nil, err
	}
	m.Done = done
	return m, nil
}

func (f *fakeStore) DeleteMemo(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.ownedMemo(userID, id); err != nil {
		return err
	}
	delete(f.memos, id)
	return nil
}

// Settings and calculator.

func (f *fakeStore) GetOrCreateSettings(_ context.Context, userID string) (*model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[userID]; ok {
		return s, nil
	}
	s := model.DefaultSettings(userID)
	f.settings[userID] = s
	return s, nil
}

func (f *fakeStore) UpsertSettings(_ context.Context, s *model.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[s.UserID] = s
	return nil
}

func (f *fakeStore) UpsertMeasurement(_ context.Context, m *model.Measurement) error {
	if err := f.fail("UpsertMeasurement"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.measurements[m.UserID] = m
	return nil
}

func (f *fakeStore) CreateCalorieCalculation(_ context.Context, c *model.CalorieCalculation) error {
	if err := f.fail("CreateCalorieCalculation"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calcs = append(f.calcs, c)
	return nil
}

func (f *fakeStore) ListCalorieCalculations(_ context.Context, userID string, limit int) ([]*model.CalorieCalculation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.CalorieCalculation{}
	for i := len(f.calcs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.calcs[i].UserID == userID {
			out = append(out, f.calcs[i])
		}
	}
	return out, nil
}

// Users.

func (f *fakeStore) UpsertUser(_ context.Context, user *model.User) error {
	if err := f.fail("UpsertUser"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// Contacts and alerts.

func (f *fakeStore) ListContacts(_ context.Context, userID string) ([]*model.EmergencyContact, error) {
	if err := f.fail("ListContacts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.EmergencyContact{}
	for _, c := range f.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) GetContact(_ context.Context, userID, id string) (*model.EmergencyContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrContactNotFound
	}
	return c, nil
}

func (f *fakeStore) GetContactByID(_ context.Context, id string) (*model.EmergencyContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeStore) CreateContact(_ context.Context, c *model.EmergencyContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.CreatedAt = time.Now()
	f.contacts[c.ID] = c
	return nil
}

func (f *fakeStore) UpdateContact(_ context.Context, c *model.EmergencyContact, reset bool) (*model.EmergencyContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.contacts[c.ID]
	if !ok || cur.UserID != c.UserID {
		return nil, repository.ErrContactNotFound
	}
	out := *c
	out.CreatedAt = cur.CreatedAt
	out.IsVerified, out.VerifiedAt, out.VerificationTokenHash = cur.IsVerified, cur.VerifiedAt, cur.VerificationTokenHash
	if reset {
		out.IsVerified, out.VerifiedAt, out.VerificationTokenHash = false, nil, c.VerificationTokenHash
	}
	f.contacts[c.ID] = &out
	return &out, nil
}

func (f *fakeStore) MarkContactVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return repository.ErrContactNotFound
	}
	now := time.Now()
	c.IsVerified, c.VerifiedAt = true, &now
	return nil
}

func (f *fakeStore) DeleteContact(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.UserID != userID {
		return repository.ErrContactNotFound
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeStore) CreateAlert(_ context.Context, a *model.EmergencyAlert) error {
	if err := f.fail("CreateAlert"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a.CreatedAt = time.Now()
	f.alerts[a.ID] = a
	return nil
}

func (f *fakeStore) RecordContactAlert(_ context.Context, ca *model.ContactAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ca.ResponseStatus = model.ResponsePending
	f.contactAlert = append(f.contactAlert, ca)
	return nil
}

func (f *fakeStore) ListAlerts(_ context.Context, userID string, limit int) ([]*model.EmergencyAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.EmergencyAlert{}
	for _, a := range f.alerts {
		if a.UserID == userID && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) ResolveAlert(_ context.Context, userID, id string) (*model.EmergencyAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrAlertNotFound
	}
	now := time.Now()
	a.Status, a.ResolvedAt = model.AlertStatusResolved, &now
	return a, nil
}

func (f *fakeStore) AcknowledgeContactAlert(_ context.Context, alertID, contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ca := range f.contactAlert {
		if ca.AlertID == alertID && ca.ContactID == contactID {
			now := time.Now()
			ca.ResponseStatus, ca.ResponseTime = model.ResponseAcknowledged, &now
			return nil
		}
	}
	return repository.ErrContactAlertNotFound
}

// Preferences.

func (f *fakeStore) GetEmergencyPreferences(_ context.Context, userID string) (model.EmergencyPreferences, error) {
	if err := f.fail("GetEmergencyPreferences"); err != nil {
		return model.EmergencyPreferences{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.emergency[userID]; ok {
		return p, nil
	}
	return model.DefaultEmergencyPreferences(), nil
}

func (f *fakeStore) UpsertEmergencyPreferences(_ context.Context, userID string, p model.EmergencyPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emergency[userID] = p
	return nil
}

func (f *fakeStore) GetNotificationPreferences(_ context.Context, userID string) (model.NotificationPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.notification[userID]; ok {
		return p, nil
	}
	return model.DefaultNotificationPreferences(), nil
}

func (f *fakeStore) UpsertNotificationPreferences(_ context.Context, userID string, p model.NotificationPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notification[userID] = p
	return nil
}

// Sounds.

func (f *fakeStore) UpsertFavoriteSound(_ context.Context, s *model.FavoriteSound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sounds[s.UserID+"/"+s.SoundID] = s
	return nil
}

func (f *fakeStore) ListFavoriteSounds(_ context.Context, userID string) ([]*model.FavoriteSound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.FavoriteSound{}
	for _, s := range f.sounds {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteFavoriteSound(_ context.Context, userID, soundID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "/" + soundID
	if _, ok := f.sounds[key]; !ok {
		return repository.ErrFavoriteNotFound
	}
	delete(f.sounds, key)
	return nil
}

// Exercise.

func (f *fakeStore) WorkoutTotalsSince(_ context.Context, userID string, since time.Time) (repository.WeeklyTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var t repository.WeeklyTotals
	for _, w := range f.workouts {
		if w.UserID == userID && !w.CompletedAt.Before(since) {
			t.CaloriesBurned += w.CaloriesBurned
			t.WorkoutsCompleted++
		}
	}
	return t, nil
}

func (f *fakeStore) CreateWorkout(_ context.Context, w *model.Workout) error {
	if err := f.fail("CreateWorkout"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workouts = append(f.workouts, w)
	return nil
}

func (f *fakeStore) GetStreak(_ context.Context, userID string) (*model.Streak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.streaks[userID]; ok {
		out := *s
		return &out, nil
	}
	return &model.Streak{UserID: userID}, nil
}

func (f *fakeStore) UpsertStreak(_ context.Context, s *model.Streak) error {
	if err := f.fail("UpsertStreak"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *s
	f.streaks[s.UserID] = &out
	return nil
}

func (f *fakeStore) AddWeeklyProgress(_ context.Context, userID string, weekStart time.Time, calories, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weekly[userID+"/"+weekStart.Format("2006-01-02")] += calories
	return nil
}

func (f *fakeStore) ActiveGoalType(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.goals) - 1; i >= 0; i-- {
		if f.goals[i].UserID == userID && f.goals[i].Status == model.GoalActive {
			return f.goals[i].GoalType, nil
		}
	}
	return "", nil
}

func (f *fakeStore) CompleteActiveGoals(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.goals {
		if g.UserID == userID && g.Status == model.GoalActive {
			g.Status = model.GoalCompleted
		}
	}
	return nil
}

func (f *fakeStore) CreateGoal(_ context.Context, g *model.WorkoutGoal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals = append(f.goals, g)
	return nil
}

func (f *fakeStore) CaloriesByDay(context.Context, string, time.Time) ([]model.CaloriesDay, error) {
	return f.caloriesByDay, nil
}

func (f *fakeStore) WorkoutsByDay(context.Context, string, time.Time) ([]model.WorkoutDay, error) {
	return f.workoutsByDay, nil
}

func (f *fakeStore) WorkoutTypeDistribution(context.Context, string, time.Time) ([]model.WorkoutTypeShare, error) {
	return f.typeShares, nil
}

// Health.

func (f *fakeStore) CreateHealthMetric(_ context.Context, m *model.HealthMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = append(f.metrics, m)
	return nil
}

func (f *fakeStore) LatestHealthMetric(_ context.Context, userID string) (*model.HealthMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.metrics) - 1; i >= 0; i-- {
		if f.metrics[i].UserID == userID {
			return f.metrics[i], nil
		}
	}
	return nil, repository.ErrHealthMetricNotFound
}

func (f *fakeStore) ListHealthMetrics(_ context.Context, userID string, limit int) ([]*model.HealthMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.HealthMetric{}
	for i := len(f.metrics) - 1; i >= 0 && len(out) < limit; i-- {
		if f.metrics[i].UserID == userID {
			out = append(out, f.metrics[i])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSensorReading(_ context.Context, s *model.SensorReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings = append(f.readings, s)
	return nil
}

func (f *fakeStore) LatestSensorReading(_ context.Context, userID string) (*model.SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.readings) - 1; i >= 0; i-- {
		if f.readings[i].UserID == userID {
			return f.readings[i], nil
		}
	}
	return nil, repository.ErrSensorReadingNotFound
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeStore) UpdateProfileMeasurements(_ context.Context, userID string, age int, weight, height float64, gender string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[userID]; ok {
		p.Age, p.Weight, p.Height, p.Gender = &age, &weight, &height, &gender
	}
	return nil
}

// Medications.

func (f *fakeStore) ListMedications(_ context.Context, userID string) ([]*model.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Medication{}
	for _, m := range f.meds {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetMedication(_ context.Context, userID, id string) (*model.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meds[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrMedicationNotFound
	}
	return m, nil
}

func (f *fakeStore) CreateMedication(_ context.Context, m *model.Medication) error {
	if err := f.fail("CreateMedication"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meds[m.ID] = m
	return nil
}

func (f *fakeStore) UpdateMedication(_ context.Context, m *model.Medication) (*model.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.meds[m.ID]
	if !ok || cur.UserID != m.UserID {
		return nil, repository.ErrMedicationNotFound
	}
	out := *m
	f.meds[m.ID] = &out
	return &out, nil
}

func (f *fakeStore) ReplaceReminders(_ context.Context, _, medicationID string, times []string) error {
	if err := f.fail("ReplaceReminders"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[medicationID] = append([]string(nil), times...)
	return nil
}

func (f *fakeStore) DeleteMedication(_ context.Context, userID, id string) (*model.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meds[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrMedicationNotFound
	}
	delete(f.meds, id)
	delete(f.reminders, id)
	return m, nil
}

func (f *fakeStore) CreateTracking(_ context.Context, t *model.MedicationTracking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.CreatedAt = time.Now()
	f.tracking = append(f.tracking, t)
	return nil
}

func (f *fakeStore) DoseCountsSince(_ context.Context, userID string, since time.Time) (taken, total int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tracking {
		if t.UserID == userID && !t.CreatedAt.Before(since) {
			total++
			if t.Taken {
				taken++
			}
		}
	}
	return taken, total, nil
}

// Transactional views.

type calorieFake struct{ *fakeStore }

func (f calorieFake) InTx(_ context.Context, fn func(CalorieStore) error) error {
	return f.inTx(func() error { return fn(f) })
}

type exerciseFake struct{ *fakeStore }

func (f exerciseFake) InTx(_ context.Context, fn func(ExerciseStore) error) error {
	return f.inTx(func() error { return fn(f) })
}

type medicationFake struct{ *fakeStore }

func (f medicationFake) InTx(_ context.Context, fn func(MedicationStore) error) error {
	return f.inTx(func() error { return fn(f) })
}

// Delivery fakes.

type fakeMailer struct {
	mu      sync.Mutex
	sent    []notify.Message
	failFor map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To] {
		return errBoom
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

type fakeSMS struct {
	mu      sync.Mutex
	sent    map[string]string
	failFor map[string]bool
}

func (s *fakeSMS) SendSMS(_ context.Context, phone, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[phone] {
		return errBoom
	}
	if s.sent == nil {
		s.sent = map[string]string{}
	}
	s.sent[phone] = body
	return nil
}

func (s *fakeSMS) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
