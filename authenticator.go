package identity

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// Authenticator composes the credential codec, the token service, and the
// user store into the registration and login flows.
type Authenticator struct {
	store            Store
	tokens           *TokenService
	logger           Logger
	registrationOpen bool
	now              func() time.Time
}

// NewAuthenticator returns an Authenticator with registration enabled.
func NewAuthenticator(store Store, tokens *TokenService) *Authenticator {
	return &Authenticator{
		store:            store,
		tokens:           tokens,
		logger:           defLogger{},
		registrationOpen: true,
		now:              time.Now,
	}
}

// WithLogger overrides the default logger.
func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithRegistrationOpen toggles self-registration at runtime.
func (a *Authenticator) WithRegistrationOpen(open bool) *Authenticator {
	a.registrationOpen = open
	return a
}

// WithClock injects a custom clock (useful for tests).
func (a *Authenticator) WithClock(clock func() time.Time) *Authenticator {
	if clock != nil {
		a.now = clock
	}
	return a
}

// Register normalizes and validates the username, hashes the password, and
// persists the principal. Hashing happens before the single atomic create so
// a failure at any step leaves no partial record. A duplicate username
// surfaces as a conflict.
func (a *Authenticator) Register(ctx context.Context, username, password string) (*User, error) {
	if !a.registrationOpen {
		return nil, ErrRegistrationDisabled
	}

	normalized, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     normalized,
		PasswordHash: hash,
		CreatedAt:    a.now(),
	}

	if err := a.store.Users().Create(ctx, user); err != nil {
		if IsConflict(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist user")
	}

	a.logger.Info("user registered: %s", normalized)
	return user, nil
}

// Login verifies the password for the case-normalized username and issues a
// token for it. Unknown usernames, malformed usernames, deactivated accounts,
// and wrong passwords all collapse into the same uniform rejection so callers
// cannot probe which usernames exist.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	normalized, err := NormalizeUsername(username)
	if err != nil {
		return "", time.Time{}, ErrUnauthorized
	}

	user, err := a.store.Users().Get(ctx, normalized)
	if err != nil {
		if IsNotFound(err) {
			return "", time.Time{}, ErrUnauthorized
		}
		return "", time.Time{}, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if user.Deactivated {
		a.logger.Warn("login rejected for deactivated user: %s", normalized)
		return "", time.Time{}, ErrUnauthorized
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrCredentialMismatch) {
			return "", time.Time{}, ErrUnauthorized
		}
		a.logger.Error("stored hash unusable during login for %s: %v", normalized, err)
		return "", time.Time{}, err
	}

	token, expiresAt, err := a.tokens.Issue(user.Username)
	if err != nil {
		return "", time.Time{}, err
	}

	a.logger.Info("user logged in: %s", normalized)
	return token, expiresAt, nil
}
