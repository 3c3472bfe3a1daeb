package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the signed envelope carried by a bearer token: a subject
// identifier plus an absolute expiry instant. Nothing else is bound into the
// credential; liveness of the subject is always re-checked against storage by
// the authorization middleware.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// Subject returns the subject identifier the token was issued for.
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the absolute expiry instant.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance instant, zero when absent.
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
