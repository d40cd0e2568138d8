package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/notify"
)

func TestSettingsService_DefaultsOnFirstRead(t *testing.T) {
	svc := NewSettingsService(newFakeStore())

	s, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "", s.CampaignName)
	assert.Equal(t, "00:00:00", s.DayEndTime)
	assert.False(t, s.NotificationEnabled)
	assert.Equal(t, model.UnitMetric, s.MeasurementUnit)
}

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(newFakeStore())

	got, err := svc.Update(ctx, &model.Settings{UserID: "u1", DayEndTime: "22:30", MeasurementUnit: model.UnitImperial})
	require.NoError(t, err)
	assert.Equal(t, "22:30:00", got.DayEndTime)

	read, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.UnitImperial, read.MeasurementUnit)
}

func TestSettingsService_UpdateValidation(t *testing.T) {
	svc := NewSettingsService(newFakeStore())

	_, err := svc.Update(context.Background(), &model.Settings{UserID: "u1", MeasurementUnit: "Furlongs"})
	assert.ErrorIs(t, err, ErrInvalidMeasurementUnit)

	for _, bad := range []string{"24:00", "7:00", "12:60", "noon"} {
		_, err := svc.Update(context.Background(), &model.Settings{UserID: "u1", DayEndTime: bad})
		assert.ErrorIs(t, err, ErrInvalidDayEndTime, bad)
	}
}

func TestPreferenceService_EmergencyDefaultsMissingFields(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewPreferenceService(store, &fakeMailer{}, notify.MustNewRenderer(), testLogger())

	got, err := svc.Emergency(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultEmergencyPreferences(), got)

	ambulance := true
	saved, err := svc.UpdateEmergency(ctx, "u1", EmergencyUpdate{SendToAmbulanceService: &ambulance})
	require.NoError(t, err)
	assert.True(t, saved.SendToEmergencyContacts, "missing field takes the default")
	assert.True(t, saved.SendToAmbulanceService)
	assert.Equal(t, saved, store.emergency["u1"])
}

func TestPreferenceService_NotificationLeadTimeBounds(t *testing.T) {
	ctx := context.Background()
	svc := NewPreferenceService(newFakeStore(), &fakeMailer{}, notify.MustNewRenderer(), testLogger())

	for _, lead := range []int{-1, 1441} {
		lead := lead
		_, err := svc.UpdateNotifications(ctx, "u1", NotificationUpdate{ReminderLeadTime: &lead})
		assert.ErrorIs(t, err, ErrInvalidLeadTime)
	}

	lead, off := 1440, false
	got, err := svc.UpdateNotifications(ctx, "u1", NotificationUpdate{EmailNotifications: &off, ReminderLeadTime: &lead})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationPreferences{EmailNotifications: false, ReminderLeadTime: 1440}, got)
}

func TestPreferenceService_SendTestNotification(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	svc := NewPreferenceService(newFakeStore(), mailer, notify.MustNewRenderer(), testLogger())

	assert.ErrorIs(t, svc.SendTestNotification(ctx, "u1", "", "Ama"), ErrNoEmail)

	require.NoError(t, svc.SendTestNotification(ctx, "u1", "ama@example.com", "Ama"))
	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ama@example.com", sent[0].To)
	assert.Equal(t, notify.SubjectTestNotification, sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "15 minutes")
}

func TestSoundService_OwnerMustMatchToken(t *testing.T) {
	ctx := context.Background()
	svc := NewSoundService(newFakeStore())

	err := svc.Add(ctx, "u1", &model.FavoriteSound{UserID: "u2", SoundID: "42"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.List(ctx, "u1", "u2")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, svc.Remove(ctx, "u1", "u2", "42"), ErrForbidden)
}

func TestSoundService_AddListRemove(t *testing.T) {
	ctx := context.Background()
	svc := NewSoundService(newFakeStore())

	require.NoError(t, svc.Add(ctx, "u1", &model.FavoriteSound{UserID: "u1", SoundID: "42", SoundName: "Rain"}))
	require.NoError(t, svc.Add(ctx, "u1", &model.FavoriteSound{UserID: "u1", SoundID: "42", SoundName: "Heavy rain"}))

	list, err := svc.List(ctx, "u1", "u1")
	require.NoError(t, err)
	require.Len(t, list, 1, "re-adding upserts")
	assert.Equal(t, "Heavy rain", list[0].SoundName)

	require.NoError(t, svc.Remove(ctx, "u1", "u1", "42"))
	assert.ErrorIs(t, svc.Remove(ctx, "u1", "u1", "42"), ErrFavoriteNotFound)
}
