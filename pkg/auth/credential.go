package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the opaque bearer token proving authentication
type Credential struct {
	Value    string
	Subject  string    // sub claim, empty for opaque tokens
	IssuedAt time.Time // zero when the token carries no iat claim
}

// NewCredential wraps a raw token. When the token is a JWT its sub and iat
// claims are read without verifying the signature; the server remains the only judge of
// validity.
func NewCredential(value string) Credential {
	cred := Credential{Value: strings.TrimSpace(value)}
	if cred.Value == "" {
		return cred
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(cred.Value, &claims); err == nil {
		cred.Subject = claims.Subject
		if claims.IssuedAt != nil {
			cred.IssuedAt = claims.IssuedAt.Time
		}
	}

	return cred
}

// IsZero reports whether the credential carries no token
func (c Credential) IsZero() bool {
	return c.Value == ""
}

// SameAccount reports whether both credentials belong to one account. Tokens
// with a subject are compared by subject, anything else by value.
func (c Credential) SameAccount(other Credential) bool {
	if c.Subject != "" && other.Subject != "" {
		return c.Subject == other.Subject
	}
	return c.Value == other.Value
}

// Redacted returns a short prefix of the token that is safe to log
func (c Credential) Redacted() string {
	if len(c.Value) <= 8 {
		return "****"
	}
	return c.Value[:4] + "****"
}
