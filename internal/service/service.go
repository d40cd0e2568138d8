// Package service provides business logic for the application.
package service

import (
	"errors"
	"time"
)

// Service errors.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrMissingFields          = errors.New("missing required fields")
	ErrForbidden              = errors.New("access denied")
	ErrMemoNotFound           = errors.New("memo not found")
	ErrContactNotFound        = errors.New("contact not found")
	ErrAlertNotFound          = errors.New("alert not found")
	ErrNoEmergencyContacts    = errors.New("no emergency contacts found")
	ErrInvalidVerification    = errors.New("invalid verification token")
	ErrInvalidAcknowledgement = errors.New("invalid acknowledgement link")
	ErrFavoriteNotFound       = errors.New("favorite not found")
	ErrMedicationNotFound     = errors.New("medication not found")
	ErrNoEmail                = errors.New("no email address on token")
	ErrInvalidMeasurementUnit = errors.New("measurement unit must be Metric or Imperial")
	ErrInvalidDayEndTime      = errors.New("day end time must be HH:MM or HH:MM:SS")
	ErrInvalidLeadTime        = errors.New("reminder lead time must be between 0 and 1440")
	ErrInvalidDoseTime        = errors.New("medication times must be HH:MM")
	ErrNoVitals               = errors.New("at least one vital sign is required")
)

// clock is the time source shared by services.
type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
