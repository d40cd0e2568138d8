package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/notify"
)

// maxLeadTime is one day in minutes.
const maxLeadTime = 1440

// PreferenceService reads and writes emergency and notification
// preferences, and sends the notification test email.
type PreferenceService struct {
	store    PreferenceStore
	mailer   notify.Mailer
	renderer *notify.Renderer
	logger   *slog.Logger
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(store PreferenceStore, mailer notify.Mailer, renderer *notify.Renderer, logger *slog.Logger) *PreferenceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferenceService{store: store, mailer: mailer, renderer: renderer, logger: logger}
}

// Emergency returns the user's emergency preferences.
func (s *PreferenceService) Emergency(ctx context.Context, userID string) (model.EmergencyPreferences, error) {
	return s.store.GetEmergencyPreferences(ctx, userID)
}

// EmergencyUpdate carries the fields a client sent. Nil fields take the
// default value.
type EmergencyUpdate struct {
	SendToEmergencyContacts *bool
	SendToAmbulanceService  *bool
}

// UpdateEmergency upserts emergency preferences.
func (s *PreferenceService) UpdateEmergency(ctx context.Context, userID string, in EmergencyUpdate) (model.EmergencyPreferences, error) {
	p := model.DefaultEmergencyPreferences()
	if in.SendToEmergencyContacts != nil {
		p.SendToEmergencyContacts = *in.SendToEmergencyContacts
	}
	if in.SendToAmbulanceService != nil {
		p.SendToAmbulanceService = *in.SendToAmbulanceService
	}
	if err := s.store.UpsertEmergencyPreferences(ctx, userID, p); err != nil {
		return model.EmergencyPreferences{}, err
	}
	return p, nil
}

// Notifications returns the user's reminder preferences.
func (s *PreferenceService) Notifications(ctx context.Context, userID string) (model.NotificationPreferences, error) {
	return s.store.GetNotificationPreferences(ctx, userID)
}

// NotificationUpdate carries the fields a client sent. Nil fields take the
// default value.
type NotificationUpdate struct {
	EmailNotifications *bool
	ReminderLeadTime   *int
}

// UpdateNotifications validates and upserts reminder preferences.
func (s *PreferenceService) UpdateNotifications(ctx context.Context, userID string, in NotificationUpdate) (model.NotificationPreferences, error) {
	p := model.DefaultNotificationPreferences()
	if in.EmailNotifications != nil {
		p.EmailNotifications = *in.EmailNotifications
	}
	if in.ReminderLeadTime != nil {
		if *in.ReminderLeadTime < 0 || *in.ReminderLeadTime > maxLeadTime {
			return model.NotificationPreferences{}, ErrInvalidLeadTime
		}
		p.ReminderLeadTime = *in.ReminderLeadTime
	}
	if err := s.store.UpsertNotificationPreferences(ctx, userID, p); err != nil {
		return model.NotificationPreferences{}, err
	}
	return p, nil
}

// SendTestNotification mails a sample reminder to email.
func (s *PreferenceService) SendTestNotification(ctx context.Context, userID, email, userName string) error {
	if email == "" {
		return ErrNoEmail
	}
	prefs, err := s.store.GetNotificationPreferences(ctx, userID)
	if err != nil {
		return err
	}
	msg, err := s.renderer.TestNotification(email, userName, prefs.ReminderLeadTime)
	if err != nil {
		return fmt.Errorf("failed to render test notification: %w", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send test notification: %w", err)
	}
	s.logger.Info("test_notification_sent", "user_id", userID)
	return nil
}
