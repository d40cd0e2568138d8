package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken indicates no bearer token was presented.
	ErrMissingToken = errors.New("no authentication token provided")
	// ErrTokenExpired indicates the token's exp claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers every other verification failure.
	ErrInvalidToken = errors.New("invalid token")
)

// userIDClaims lists the claims that may carry the user ID, in lookup order.
// The .NET auth service emits "uid" and "nameid"; older tokens use "sub".
var userIDClaims = []string{"uid", "nameid", "sub", "id", "user_id"}

// Verifier checks HS256 tokens issued by the auth service.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier creates a Verifier. Empty issuer or audience skips that check.
func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// Verify validates the signature and registered claims of token and
// returns the Principal it names.
func (v *Verifier) Verify(token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	p := principalFromClaims(claims)
	if p.UserID == "" {
		return nil, fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}
	return p, nil
}

func principalFromClaims(claims jwt.MapClaims) *Principal {
	p := &Principal{}
	for _, name := range userIDClaims {
		if s := claimString(claims, name); s != "" {
			p.UserID = s
			break
		}
	}

	p.Email = claimString(claims, "email")
	if p.Email == "" {
		if sub := claimString(claims, "sub"); strings.Contains(sub, "@") {
			p.Email = sub
		}
	}

	p.Name = claimString(claims, "name")
	if p.Name == "" {
		p.Name = strings.TrimSpace(claimString(claims, "given_name") + " " + claimString(claims, "family_name"))
	}
	return p
}

// claimString reads a claim as a string. Numeric IDs are formatted without
// a fractional part.
func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Issuer signs tokens with the same claim layout the auth service uses.
// It backs development tooling and tests.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewIssuer creates an Issuer.
func NewIssuer(secret, issuer, audience string) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, audience: audience, now: time.Now}
}

// Issue signs a token for p that expires after ttl.
func (i *Issuer) Issue(p Principal, ttl time.Duration) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"uid":   p.UserID,
		"sub":   p.UserID,
		"email": p.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if p.Name != "" {
		claims["name"] = p.Name
	}
	if i.issuer != "" {
		claims["iss"] = i.issuer
	}
	if i.audience != "" {
		claims["aud"] = i.audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
