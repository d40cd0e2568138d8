package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/evansachie/lifeguard/internal/metrics"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/notify"
	"github.com/evansachie/lifeguard/internal/repository"
)

const (
	// alertConcurrency bounds contacts notified in parallel.
	alertConcurrency  = 8
	alertHistoryLimit = 50
)

// AlertInput is the optional detail a user attaches to an alert.
type AlertInput struct {
	Message     string
	Location    string
	MedicalInfo string
}

// AlertDelivery reports how an alert reached one contact.
type AlertDelivery struct {
	ContactID   string `json:"contactId"`
	ContactName string `json:"contactName"`
	EmailSent   bool   `json:"emailSent"`
	SMSSent     bool   `json:"smsSent"`
}

// AlertResult is the outcome of an alert fan-out.
type AlertResult struct {
	Success           bool            `json:"success"`
	Message           string          `json:"message,omitempty"`
	AlertID           string          `json:"alertId,omitempty"`
	AlertsSent        []AlertDelivery `json:"alertsSent"`
	AmbulanceNotified bool            `json:"ambulanceNotified"`
}

// RaiseAlert notifies every emergency contact, and the ambulance service
// when the user opted in. It returns ErrNoEmergencyContacts when there is
// nobody to notify. A failed channel is recorded and never stops the
// remaining deliveries.
func (s *ContactService) RaiseAlert(ctx context.Context, userID string, in AlertInput) (*AlertResult, error) {
	prefs, err := s.store.GetEmergencyPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load emergency preferences: %w", err)
	}
	user := s.loadUser(ctx, userID)

	var contacts []*model.EmergencyContact
	if prefs.SendToEmergencyContacts {
		contacts, err = s.store.ListContacts(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	ambulance := prefs.SendToAmbulanceService && s.opts.AmbulanceNumber != ""
	if len(contacts) == 0 && !ambulance {
		return nil, ErrNoEmergencyContacts
	}

	medicalInfo := in.MedicalInfo
	if medicalInfo == "" {
		medicalInfo = user.MedicalInfo
	}
	alert := &model.EmergencyAlert{
		ID:          repository.NewID(),
		UserID:      userID,
		Message:     orDefault(in.Message, notify.DefaultEmergencyMessage),
		Location:    orDefault(in.Location, notify.DefaultLocation),
		MedicalInfo: orDefault(medicalInfo, notify.DefaultMedicalInfo),
		Status:      model.AlertStatusActive,
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return nil, err
	}
	s.metrics.IncAlertRaised()
	s.logger.Info("alert_raised", "user_id", userID, "alert_id", alert.ID, "contacts", len(contacts), "ambulance", ambulance)

	// Deliveries outlive a client that hangs up mid-request.
	sendCtx := context.WithoutCancel(ctx)
	sms := notify.EmergencySMS(user.DisplayName(), alert.Message, alert.Location)

	deliveries := make([]AlertDelivery, len(contacts))
	g := new(errgroup.Group)
	g.SetLimit(alertConcurrency)
	for i, c := range contacts {
		i, c := i, c
		g.Go(func() error {
			deliveries[i] = s.deliverAlert(sendCtx, alert, user, c, sms)
			return nil
		})
	}
	_ = g.Wait()

	res := &AlertResult{
		Success:    true,
		AlertID:    alert.ID,
		AlertsSent: deliveries,
	}
	if ambulance {
		err := s.sms.SendSMS(sendCtx, s.opts.AmbulanceNumber, sms)
		s.observeDelivery(metrics.ChannelAmbulance, s.opts.AmbulanceNumber, err)
		res.AmbulanceNotified = err == nil
	}
	return res, nil
}

func (s *ContactService) deliverAlert(ctx context.Context, alert *model.EmergencyAlert, user *model.User, c *model.EmergencyContact, sms string) AlertDelivery {
	out := AlertDelivery{ContactID: c.ID, ContactName: c.Name}

	link := notify.TrackingLink(s.opts.FrontendURL, alert.ID, c.ID, s.signer.Sign(alert.ID, c.ID))
	msg, err := s.renderer.Emergency(notify.EmergencyEmail{
		To:           c.Email,
		ContactName:  c.Name,
		UserName:     user.DisplayName(),
		UserPhone:    user.Phone,
		Message:      alert.Message,
		Location:     alert.Location,
		MedicalInfo:  alert.MedicalInfo,
		TrackingLink: link,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	out.EmailSent = err == nil
	s.observeDelivery(metrics.ChannelEmail, c.ID, err)

	err = s.sms.SendSMS(ctx, c.Phone, sms)
	out.SMSSent = err == nil
	s.observeDelivery(metrics.ChannelSMS, c.ID, err)

	if err := s.store.RecordContactAlert(ctx, &model.ContactAlert{
		ID:          repository.NewID(),
		AlertID:     alert.ID,
		ContactID:   c.ID,
		ContactName: c.Name,
		EmailSent:   out.EmailSent,
		SMSSent:     out.SMSSent,
	}); err != nil {
		s.logger.Error("contact_alert_record_failed", "alert_id", alert.ID, "contact_id", c.ID, "error", err)
	}
	return out
}

// Alerts returns the alert history, newest first.
func (s *ContactService) Alerts(ctx context.Context, userID string) ([]*model.EmergencyAlert, error) {
	return s.store.ListAlerts(ctx, userID, alertHistoryLimit)
}

// ResolveAlert closes an alert.
func (s *ContactService) ResolveAlert(ctx context.Context, userID, alertID string) (*model.EmergencyAlert, error) {
	a, err := s.store.ResolveAlert(ctx, userID, alertID)
	if err != nil {
		return nil, mapContactErr(err)
	}
	s.logger.Info("alert_resolved", "user_id", userID, "alert_id", alertID)
	return a, nil
}

// Acknowledge records a contact's response from a signed tracking link.
func (s *ContactService) Acknowledge(ctx context.Context, alertID, contactID, sig string) error {
	if alertID == "" || contactID == "" || s.signer.Verify(alertID, contactID, sig) != nil {
		return ErrInvalidAcknowledgement
	}
	if err := s.store.AcknowledgeContactAlert(ctx, alertID, contactID); err != nil {
		return mapContactErr(err)
	}
	s.logger.Info("alert_acknowledged", "alert_id", alertID, "contact_id", contactID)
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
