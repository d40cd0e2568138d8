package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/metrics"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/notify"
	"github.com/evansachie/lifeguard/internal/repository"
)

// ContactOptions carries the deployment settings used by contact emails
// and the alert fan-out.
type ContactOptions struct {
	FrontendURL     string
	AmbulanceNumber string
}

// ContactService manages emergency contacts and raises alerts to them.
type ContactService struct {
	store    ContactStore
	mailer   notify.Mailer
	sms      notify.SMSSender
	renderer *notify.Renderer
	signer   *auth.LinkSigner
	opts     ContactOptions
	logger   *slog.Logger
	metrics  metrics.Recorder
	now      clock
}

// NewContactService creates a new ContactService.
func NewContactService(
	store ContactStore,
	mailer notify.Mailer,
	sms notify.SMSSender,
	renderer *notify.Renderer,
	signer *auth.LinkSigner,
	opts ContactOptions,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *ContactService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{
		store:    store,
		mailer:   mailer,
		sms:      sms,
		renderer: renderer,
		signer:   signer,
		opts:     opts,
		logger:   logger,
		metrics:  recorder,
		now:      utcNow,
	}
}

// ContactInput is the editable part of a contact.
type ContactInput struct {
	Name         string
	Phone        string
	Email        string
	Relationship string
	Priority     int
	Role         string
}

func (in *ContactInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Phone == "" {
		return ErrMissingFields
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return ErrInvalidInput
	}
	if in.Priority <= 0 {
		in.Priority = 1
	}
	if in.Role == "" {
		in.Role = model.DefaultContactRole
	}
	return nil
}

// List returns contacts ordered by priority.
func (s *ContactService) List(ctx context.Context, userID string) ([]*model.EmergencyContact, error) {
	return s.store.ListContacts(ctx, userID)
}

// Create stores a contact and mails it a verification link. A failed
// email is logged and does not fail the call.
func (s *ContactService) Create(ctx context.Context, userID string, in ContactInput) (*model.EmergencyContact, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	c := &model.EmergencyContact{
		ID:           repository.NewID(),
		UserID:       userID,
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		Relationship: in.Relationship,
		Priority:     in.Priority,
		Role:         in.Role,
	}
	token, err := auth.GenerateVerificationToken(c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}
	c.VerificationTokenHash = token.Hash

	if err := s.store.CreateContact(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contact_created", "user_id", userID, "contact_id", c.ID)
	s.sendVerification(ctx, c, token.Plaintext)
	return c, nil
}

// Update rewrites a contact. Changing the email restarts verification.
func (s *ContactService) Update(ctx context.Context, userID, id string, in ContactInput) (*model.EmergencyContact, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	current, err := s.store.GetContact(ctx, userID, id)
	if err != nil {
		return nil, mapContactErr(err)
	}

	c := &model.EmergencyContact{
		ID:           id,
		UserID:       userID,
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		Relationship: in.Relationship,
		Priority:     in.Priority,
		Role:         in.Role,
	}

	emailChanged := !strings.EqualFold(current.Email, in.Email)
	var token *auth.VerificationToken
	if emailChanged {
		token, err = auth.GenerateVerificationToken(id)
		if err != nil {
			return nil, fmt.Errorf("failed to create verification token: %w", err)
		}
		c.VerificationTokenHash = token.Hash
	}

	updated, err := s.store.UpdateContact(ctx, c, emailChanged)
	if err != nil {
		return nil, mapContactErr(err)
	}
	if emailChanged {
		s.sendVerification(ctx, updated, token.Plaintext)
	}
	return updated, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, userID, id string) error {
	return mapContactErr(s.store.DeleteContact(ctx, userID, id))
}

// Verify confirms a contact from the emailed token.
func (s *ContactService) Verify(ctx context.Context, token string) (*model.EmergencyContact, error) {
	contactID, err := auth.ParseVerificationToken(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrInvalidVerification
	}

	c, err := s.store.GetContactByID(ctx, contactID)
	if err != nil {
		return nil, mapContactErr(err)
	}
	// The hash is kept after verification so a repeated click is checked too.
	ok, err := auth.VerifySecret(token, c.VerificationTokenHash)
	if err != nil || !ok {
		return nil, ErrInvalidVerification
	}
	if c.IsVerified {
		return c, nil
	}
	if err := s.store.MarkContactVerified(ctx, c.ID); err != nil {
		return nil, mapContactErr(err)
	}

	now := s.now()
	c.IsVerified = true
	c.VerifiedAt = &now
	s.logger.Info("contact_verified", "contact_id", c.ID)
	return c, nil
}

// TestAlertResult reports the channels a test alert reached.
type TestAlertResult struct {
	Success   bool `json:"success"`
	EmailSent bool `json:"emailSent"`
	SMSSent   bool `json:"smsSent"`
}

// SendTestAlert mails and texts a harmless test message to one contact.
func (s *ContactService) SendTestAlert(ctx context.Context, userID, contactID string) (TestAlertResult, error) {
	c, err := s.store.GetContact(ctx, userID, contactID)
	if err != nil {
		return TestAlertResult{}, mapContactErr(err)
	}
	user := s.loadUser(ctx, userID)

	res := TestAlertResult{Success: true}
	msg, err := s.renderer.TestAlert(c.Email, c.Name, user.DisplayName())
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	res.EmailSent = err == nil
	s.observeDelivery(metrics.ChannelEmail, c.ID, err)

	err = s.sms.SendSMS(ctx, c.Phone, notify.TestAlertSMS(user.DisplayName()))
	res.SMSSent = err == nil
	s.observeDelivery(metrics.ChannelSMS, c.ID, err)

	return res, nil
}

func (s *ContactService) sendVerification(ctx context.Context, c *model.EmergencyContact, token string) {
	user := s.loadUser(ctx, c.UserID)
	link := notify.VerificationLink(s.opts.FrontendURL, token)
	msg, err := s.renderer.Verification(c.Email, c.Name, user.DisplayName(), link)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Warn("contact_verification_email_failed", "contact_id", c.ID, "error", err)
		return
	}
	s.logger.Info("contact_verification_email_sent", "contact_id", c.ID)
}

// loadUser returns the mirrored user, or a placeholder carrying only the ID.
func (s *ContactService) loadUser(ctx context.Context, userID string) *model.User {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("user_lookup_failed", "user_id", userID, "error", err)
		}
		return &model.User{ID: userID}
	}
	return user
}

func (s *ContactService) observeDelivery(channel, target string, err error) {
	s.metrics.IncAlertDelivery(channel, err == nil)
	if err != nil {
		s.logger.Warn("alert_delivery_failed", "channel", channel, "target", target, "error", err)
		return
	}
	s.logger.Info("alert_sent", "channel", channel, "target", target)
}

func mapContactErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrContactNotFound):
		return ErrContactNotFound
	case errors.Is(err, repository.ErrAlertNotFound), errors.Is(err, repository.ErrContactAlertNotFound):
		return ErrAlertNotFound
	}
	return err
}
