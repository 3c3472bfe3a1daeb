package identity

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthorized         = "unauthorized"
	TextCodeRegistrationDisabled = "registration_disabled"
	TextCodeTokenExpired         = "token_expired"
	TextCodeTokenMalformed       = "token_malformed"
	TextCodeCredentialMismatch   = "credential_mismatch"
	TextCodeMalformedHash        = "malformed_password_hash"
	TextCodeEmptyPassword        = "empty_password"
)

// ErrUnauthorized is the uniform rejection for a missing, invalid, or expired
// credential and for tokens whose subject no longer exists or is deactivated.
// It is deliberately uninformative so callers cannot enumerate accounts.
var ErrUnauthorized = errors.New("unauthorized", errors.CategoryAuthz).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrRegistrationDisabled is returned when self-registration is switched off.
var ErrRegistrationDisabled = errors.New("registration is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeRegistrationDisabled).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned when a token's signature is valid but its expiry
// instant has passed.
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token envelope cannot be parsed or its
// signature cannot be verified.
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrCredentialMismatch is returned when a plaintext password does not match
// the stored hash.
var ErrCredentialMismatch = errors.New("credential mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeCredentialMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrMalformedHash is returned when a stored password hash cannot be parsed.
// This indicates data corruption, not caller error.
var ErrMalformedHash = errors.New("stored password hash is malformed", errors.CategoryInternal).
	WithTextCode(TextCodeMalformedHash).
	WithCode(errors.CodeInternal)

// ErrEmptyPassword rejects empty plaintext passwords before hashing.
var ErrEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// IsUnauthorized reports whether err carries the uniform authorization
// rejection, regardless of wrapping.
func IsUnauthorized(err error) bool {
	return hasTextCode(err, TextCodeUnauthorized)
}

// IsRegistrationDisabled reports whether err is the closed-registration
// rejection.
func IsRegistrationDisabled(err error) bool {
	return hasTextCode(err, TextCodeRegistrationDisabled)
}

// IsTokenExpired reports whether err is the expired-token rejection.
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenMalformed reports whether err is the malformed-token rejection.
func IsTokenMalformed(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

// IsValidation reports whether err is a validation failure the caller can fix
// by correcting input.
func IsValidation(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryValidation
}

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
