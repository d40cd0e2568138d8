package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// VerificationSecretLen is the hex length of the random part of a
// verification token (16 bytes).
const VerificationSecretLen = 32

var (
	// ErrInvalidVerificationToken indicates a malformed verification token.
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	// verificationTokenRegex matches "<contactID>.<secret>".
	verificationTokenRegex = regexp.MustCompile(`^([0-9A-HJKMNP-TV-Z]{26})\.([a-f0-9]{32})$`)
)

// VerificationToken is a freshly generated contact verification token.
type VerificationToken struct {
	Plaintext string // Sent to the contact, never stored
	Hash      string // Argon2id hash for storage
}

// GenerateVerificationToken creates a token bound to contactID.
// The contact ID travels in the token so the public verify endpoint can
// find the stored hash without a lookup table.
func GenerateVerificationToken(contactID string) (*VerificationToken, error) {
	secretBytes := make([]byte, VerificationSecretLen/2)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	plaintext := contactID + "." + hex.EncodeToString(secretBytes)

	hash, err := HashSecret(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash token: %w", err)
	}

	return &VerificationToken{Plaintext: plaintext, Hash: hash}, nil
}

// ParseVerificationToken returns the contact ID a token was issued for.
func ParseVerificationToken(token string) (contactID string, err error) {
	matches := verificationTokenRegex.FindStringSubmatch(token)
	if matches == nil {
		return "", ErrInvalidVerificationToken
	}
	return matches[1], nil
}
