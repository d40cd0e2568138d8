package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// SMSSender delivers text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, body string) error
}

// LogSMSSender logs text messages. No SMS gateway is wired yet.
type LogSMSSender struct {
	logger *slog.Logger
}

// NewLogSMSSender creates an SMS sender that only logs.
func NewLogSMSSender(logger *slog.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger.With("component", "notify.sms")}
}

// SendSMS logs the message and reports success.
func (s *LogSMSSender) SendSMS(ctx context.Context, phone, body string) error {
	if phone == "" {
		return ErrNoRecipient
	}
	s.logger.Info("sms_logged", "to", phone, "length", len(body))
	return nil
}

const fallbackSenderName = "a LifeGuard user"

// EmergencySMS formats the emergency alert text.
func EmergencySMS(userName, message, location string) string {
	if userName == "" {
		userName = fallbackSenderName
	}
	if message == "" {
		message = DefaultEmergencyMessage
	}
	if location == "" {
		location = DefaultLocation
	}
	return fmt.Sprintf("EMERGENCY ALERT from %s\n%s\nLocation: %s\nPlease check your email for more details and tracking link.",
		userName, message, location)
}

// TestAlertSMS formats the test alert text.
func TestAlertSMS(userName string) string {
	if userName == "" {
		userName = fallbackSenderName
	}
	return fmt.Sprintf("TEST ALERT from LifeGuard\nThis is a TEST message to verify that %s can reach you in case of emergency.\nNo action is required.",
		userName)
}
