package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrInvalidSignature is returned when a signed link fails verification.
var ErrInvalidSignature = errors.New("invalid signature")

// LinkSigner signs the alert acknowledgement links mailed to contacts.
type LinkSigner struct {
	secret []byte
}

// NewLinkSigner creates a LinkSigner.
func NewLinkSigner(secret string) *LinkSigner {
	return &LinkSigner{secret: []byte(secret)}
}

// Sign returns the HMAC-SHA256 of "{alertID}.{contactID}" as hex.
func (s *LinkSigner) Sign(alertID, contactID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(alertID + "." + contactID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks sig against the expected signature in constant time.
func (s *LinkSigner) Verify(alertID, contactID, sig string) error {
	expected := s.Sign(alertID, contactID)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}
