package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/helmspoke/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key")

func TestTokenRoundTrip(t *testing.T) {
	service := identity.NewTokenService(testSigningKey)

	token, expiresAt, err := service.Issue("alice99")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(identity.DefaultTokenTTL), expiresAt, 5*time.Second)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice99", claims.Subject())
	assert.WithinDuration(t, expiresAt, claims.Expires(), time.Second)
}

func TestTokenExpiryBoundary(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service := identity.NewTokenService(testSigningKey, identity.WithTokenTTL(time.Hour))

	token, expiresAt, err := service.IssueAt("alice99", issued)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expiresAt)

	t.Run("valid one instant before expiry", func(t *testing.T) {
		claims, err := service.ValidateAt(token, expiresAt.Add(-time.Second))
		require.NoError(t, err)
		assert.Equal(t, "alice99", claims.Subject())
	})

	t.Run("expired at exactly the expiry instant", func(t *testing.T) {
		_, err := service.ValidateAt(token, expiresAt)
		assert.True(t, identity.IsTokenExpired(err))
	})

	t.Run("expired after the expiry instant", func(t *testing.T) {
		_, err := service.ValidateAt(token, expiresAt.Add(time.Minute))
		assert.True(t, identity.IsTokenExpired(err))
	})
}

func TestTokenValidationRejections(t *testing.T) {
	service := identity.NewTokenService(testSigningKey)

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Validate("not.a.token")
		assert.True(t, identity.IsTokenMalformed(err))
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := service.Validate("")
		assert.True(t, identity.IsTokenMalformed(err))
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other := identity.NewTokenService([]byte("some-other-key"))
		token, _, err := other.Issue("alice99")
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.True(t, identity.IsTokenMalformed(err))
	})

	t.Run("token without an expiry claim", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "alice99",
		})
		token, err := raw.SignedString(testSigningKey)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.True(t, identity.IsTokenMalformed(err))
	})

	t.Run("unsigned token", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "alice99",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.True(t, identity.IsTokenMalformed(err))
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		issuing := identity.NewTokenService(testSigningKey, identity.WithTokenIssuer("other-app"))
		token, _, err := issuing.Issue("alice99")
		require.NoError(t, err)

		checking := identity.NewTokenService(testSigningKey, identity.WithTokenIssuer("this-app"))
		_, err = checking.Validate(token)
		assert.True(t, identity.IsTokenMalformed(err))
	})

	t.Run("empty subject at issue time", func(t *testing.T) {
		_, _, err := service.Issue("")
		assert.Error(t, err)
	})
}

func TestTokenTTLOption(t *testing.T) {
	assert.Equal(t, identity.DefaultTokenTTL, identity.NewTokenService(testSigningKey).TTL())
	assert.Equal(t, time.Hour, identity.NewTokenService(testSigningKey, identity.WithTokenTTL(time.Hour)).TTL())
	assert.Equal(t, identity.DefaultTokenTTL, identity.NewTokenService(testSigningKey, identity.WithTokenTTL(0)).TTL())
}
