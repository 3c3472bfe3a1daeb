package identity_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/helmspoke/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantCode string
	}{
		{
			name:  "already normalized",
			input: "alice99",
			want:  "alice99",
		},
		{
			name:  "mixed case folds to lowercase",
			input: "JohN_doe99",
			want:  "john_doe99",
		},
		{
			name:  "surrounding whitespace is trimmed",
			input: "  alice99  ",
			want:  "alice99",
		},
		{
			name:  "minimum length",
			input: "ab",
			want:  "ab",
		},
		{
			name:  "maximum length",
			input: strings.Repeat("a", 25),
			want:  strings.Repeat("a", 25),
		},
		{
			name:     "empty",
			input:    "",
			wantCode: identity.TextCodeUsernameTooShort,
		},
		{
			name:     "single character",
			input:    "a",
			wantCode: identity.TextCodeUsernameTooShort,
		},
		{
			name:     "over maximum length",
			input:    strings.Repeat("a", 26),
			wantCode: identity.TextCodeUsernameTooLong,
		},
		{
			name:     "leading digit",
			input:    "9bob",
			wantCode: identity.TextCodeUsernameLeadingDigit,
		},
		{
			name:     "hyphen rejected",
			input:    "alice-99",
			wantCode: identity.TextCodeUsernameInvalidChars,
		},
		{
			name:     "space rejected",
			input:    "alice 99",
			wantCode: identity.TextCodeUsernameInvalidChars,
		},
		{
			name:     "non-ascii rejected",
			input:    "ålice",
			wantCode: identity.TextCodeUsernameInvalidChars,
		},
		{
			name:  "underscore allowed anywhere",
			input: "_alice_",
			want:  "_alice_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := identity.NormalizeUsername(tt.input)

			if tt.wantCode != "" {
				var richErr *errors.Error
				assert.ErrorAs(t, err, &richErr)
				assert.Equal(t, tt.wantCode, richErr.TextCode)
				assert.True(t, identity.IsValidation(err))
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
