package notify

import "errors"

// Sentinel errors for notification delivery.
var (
	ErrDeliveryNotFound = errors.New("reminder delivery not found")
	ErrNoRecipient      = errors.New("notification has no recipient")
)
