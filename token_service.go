package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenService issues and validates stateless HS256 bearer tokens. Validity
// is purely a signature plus timestamp check; the service holds no session
// state, which means there is no way to revoke an individual token before its
// expiry short of rotating the signing key. That tradeoff is intentional.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithTokenTTL overrides the default seven day validity window.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(ts *TokenService) {
		if ttl > 0 {
			ts.ttl = ttl
		}
	}
}

// WithTokenIssuer stamps and enforces an issuer claim.
func WithTokenIssuer(issuer string) TokenOption {
	return func(ts *TokenService) {
		ts.issuer = issuer
	}
}

// WithTokenClock injects a custom clock (useful for tests).
func WithTokenClock(clock func() time.Time) TokenOption {
	return func(ts *TokenService) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenLogger overrides the default logger.
func WithTokenLogger(logger Logger) TokenOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a TokenService around a server-held signing key.
// The key is read-only for the process lifetime and safe for concurrent use.
func NewTokenService(signingKey []byte, opts ...TokenOption) *TokenService {
	ts := &TokenService{
		signingKey: signingKey,
		ttl:        DefaultTokenTTL,
		logger:     defLogger{},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// TTL returns the configured validity window.
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Issue signs a token binding subject to an expiry of now plus the TTL.
func (ts *TokenService) Issue(subject string) (string, time.Time, error) {
	return ts.IssueAt(subject, ts.now())
}

// IssueAt is Issue with an explicit issuance instant.
func (ts *TokenService) IssueAt(subject string, now time.Time) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject must not be empty", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	expiresAt := now.Add(ts.ttl)
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, expiresAt, nil
}

// Validate verifies the signature and the expiry of a raw token and returns
// its claims. It never consults storage; the middleware layers the liveness
// re-check on top.
func (ts *TokenService) Validate(raw string) (*TokenClaims, error) {
	return ts.ValidateAt(raw, ts.now())
}

// ValidateAt is Validate against an explicit instant. A token is rejected as
// expired at exactly its expiry instant, not one tick later.
func (ts *TokenService) ValidateAt(raw string, now time.Time) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, ErrTokenMalformed
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if ts.issuer != "" && claims.RegisteredClaims.Issuer != ts.issuer {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
