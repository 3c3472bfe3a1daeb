package identity

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

const (
	TextCodeUsernameTooShort     = "username_too_short"
	TextCodeUsernameTooLong      = "username_too_long"
	TextCodeUsernameInvalidChars = "username_invalid_characters"
	TextCodeUsernameLeadingDigit = "username_leading_digit"
)

// ErrUsernameTooShort is returned for usernames under two characters.
var ErrUsernameTooShort = errors.New("username must be at least 2 characters", errors.CategoryValidation).
	WithTextCode(TextCodeUsernameTooShort).
	WithCode(errors.CodeBadRequest)

// ErrUsernameTooLong is returned for usernames over 25 characters.
var ErrUsernameTooLong = errors.New("username must be at most 25 characters", errors.CategoryValidation).
	WithTextCode(TextCodeUsernameTooLong).
	WithCode(errors.CodeBadRequest)

// ErrUsernameInvalidChars is returned when a username carries anything beyond
// ASCII alphanumerics and underscore.
var ErrUsernameInvalidChars = errors.New("username may only contain letters, digits, and underscore", errors.CategoryValidation).
	WithTextCode(TextCodeUsernameInvalidChars).
	WithCode(errors.CodeBadRequest)

// ErrUsernameLeadingDigit is returned when a username starts with a digit.
var ErrUsernameLeadingDigit = errors.New("username must not start with a digit", errors.CategoryValidation).
	WithTextCode(TextCodeUsernameLeadingDigit).
	WithCode(errors.CodeBadRequest)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// NormalizeUsername lowercases the given username and validates it against
// the naming rules. Violations name the specific rule broken; case conversion
// happens before any check so "JohN_doe99" normalizes cleanly.
func NormalizeUsername(username string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))

	checks := []struct {
		rules []validation.Rule
		err   *errors.Error
	}{
		{[]validation.Rule{validation.Required, validation.Length(2, 0)}, ErrUsernameTooShort},
		{[]validation.Rule{validation.Length(0, 25)}, ErrUsernameTooLong},
		{[]validation.Rule{validation.Match(usernamePattern)}, ErrUsernameInvalidChars},
	}

	for _, check := range checks {
		if err := validation.Validate(normalized, check.rules...); err != nil {
			return "", check.err
		}
	}

	if normalized[0] >= '0' && normalized[0] <= '9' {
		return "", ErrUsernameLeadingDigit
	}

	return normalized, nil
}
