// Package notify delivers emails and text messages for emergency alerts and
// medication reminders, and runs the reminder queue.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a rendered email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTML     string
	Text     string
	Priority bool
}

// Mailer sends rendered emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From header of outgoing mail.
type Sender struct {
	Email string
	Name  string
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   Sender
}

// NewSendGridMailer creates a mailer for the given API key.
func NewSendGridMailer(apiKey string, from Sender) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

// Send delivers msg. Non-2xx API responses are returned as errors.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	fromName := m.from.Name
	if msg.Priority {
		fromName += " EMERGENCY"
	}
	from := mail.NewEmail(fromName, m.from.Email)
	to := mail.NewEmail(msg.ToName, msg.To)

	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if msg.Priority {
		message.SetHeader("X-Priority", "1")
		message.SetHeader("Importance", "high")
	}

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid send: HTTP %d", resp.StatusCode)
	}
	return nil
}

// LogMailer logs emails instead of sending them. It is used when no
// SendGrid key is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("component", "notify.mailer")}
}

// Send logs msg and reports success.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	m.logger.Info("email_logged",
		"to", msg.To,
		"subject", msg.Subject,
		"priority", msg.Priority,
	)
	return nil
}
