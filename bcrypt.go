package identity

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a bcrypt hash for the given plaintext. The cost is
// tuned so a single hash lands around 100ms on commodity hardware; login
// latency bounds the upper end.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	if err != nil {
		return "", ErrMalformedHash.Clone().WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}
	return string(h), nil
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash. A malformed stored hash is reported as such rather than as a
// mismatch; attacker-controlled input never panics.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCredentialMismatch
		}
		return ErrMalformedHash.Clone().WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}
	return nil
}
