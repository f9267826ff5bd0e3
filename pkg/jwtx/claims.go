package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for console session tokens.
const DefaultSessionTTL = 8 * time.Hour

var ErrExpired = errors.New("jwtx: token expired")

// Claims are session-token claims. The role and client binding travel in
// the token so most requests resolve their principal without a store
// round-trip.
type Claims struct {
	jwt.RegisteredClaims

	// Role the principal resolved to at sign-in ("admin" or "client").
	Role string `json:"role,omitempty"`

	// ClientID binds a client principal to its account record. Empty for
	// administrators.
	ClientID string `json:"client_id,omitempty"`

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`

	// AMR lists authentication methods used, e.g. ["pwd"] or ["pwd","otp"].
	AMR []string `json:"amr,omitempty"`

	// PasswordChangeRequired marks a session signed in with a temporary
	// passphrase. Gated routes reject it until the password is replaced.
	PasswordChangeRequired bool `json:"pwd_change,omitempty"`
}

// NewSessionClaims builds minimally-correct session claims.
func NewSessionClaims(
	subject, email, role, clientID string,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Role:     role,
		ClientID: clientID,
		Email:    email,
		AMR:      amr,
	}
}

// ValidateExpiry checks the exp claim against the current time.
func (c *Claims) ValidateExpiry() error {
	if c.ExpiresAt == nil || time.Now().After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read failing means the platform RNG is broken; nothing
		// sensible can be issued.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
