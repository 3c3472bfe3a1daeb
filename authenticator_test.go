package identity_test

import (
	"context"
	"testing"

	"github.com/helmspoke/go-identity"
	"github.com/helmspoke/go-identity/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthenticator(t *testing.T) (*identity.Authenticator, identity.Store) {
	t.Helper()

	store := memstore.New()
	tokens := identity.NewTokenService(testSigningKey)
	return identity.NewAuthenticator(store, tokens), store
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthenticator(t)

	user, err := auth.Register(ctx, "Alice99", "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, "alice99", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct horse battery staple", user.PasswordHash)

	// Login is case-insensitive on the username because both sides normalize.
	token, expiresAt, err := auth.Login(ctx, "ALICE99", "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := identity.NewTokenService(testSigningKey).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice99", claims.Subject())
}

func TestRegisterRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate username conflicts and leaves no partial state", func(t *testing.T) {
		auth, store := newAuthenticator(t)

		_, err := auth.Register(ctx, "alice99", "first password")
		require.NoError(t, err)

		_, err = auth.Register(ctx, "Alice99", "second password")
		assert.True(t, identity.IsConflict(err))

		all, err := store.Users().List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		// The original credential still works.
		_, _, err = auth.Login(ctx, "alice99", "first password")
		assert.NoError(t, err)
	})

	t.Run("registration disabled", func(t *testing.T) {
		auth, store := newAuthenticator(t)
		auth.WithRegistrationOpen(false)

		_, err := auth.Register(ctx, "alice99", "password")
		assert.True(t, identity.IsRegistrationDisabled(err))

		all, err := store.Users().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("invalid username", func(t *testing.T) {
		auth, _ := newAuthenticator(t)

		_, err := auth.Register(ctx, "9bob", "password")
		assert.True(t, identity.IsValidation(err))
	})

	t.Run("empty password", func(t *testing.T) {
		auth, _ := newAuthenticator(t)

		_, err := auth.Register(ctx, "alice99", "")
		assert.True(t, identity.IsValidation(err))
	})
}

func TestLoginRejectionsAreUniform(t *testing.T) {
	ctx := context.Background()
	auth, store := newAuthenticator(t)

	_, err := auth.Register(ctx, "alice99", "the right password")
	require.NoError(t, err)

	deactivated, err := auth.Register(ctx, "bob", "also a password")
	require.NoError(t, err)
	deactivated.Deactivated = true
	require.NoError(t, store.Users().Update(ctx, "bob", deactivated))

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown username", "carol", "whatever"},
		{"wrong password", "alice99", "the wrong password"},
		{"malformed username", "not a valid username!", "whatever"},
		{"deactivated account", "bob", "also a password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := auth.Login(ctx, tt.username, tt.password)
			assert.True(t, identity.IsUnauthorized(err))
		})
	}
}
