// Package tokenauth guards fiber routes with bearer-token authentication.
// A request passes only when it carries a token that decodes against the
// server key and whose subject still resolves to a live user. Every failure
// mode produces the same uniform rejection.
package tokenauth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/helmspoke/go-identity"
)

// DefaultTokenLookup checks the Authorization header first, then the legacy
// cookie names. Sources are tried in order and the first raw token found
// wins.
const DefaultTokenLookup = "header:" + fiber.HeaderAuthorization + ",cookie:token,cookie:jwt"

// DefaultContextKey is where the verified claims land in the request locals.
const DefaultContextKey = "user"

// ErrTokenMissingOrMalformed reports that no extractor produced a raw token.
var ErrTokenMissingOrMalformed = errors.New("missing or malformed token")

// Validator decodes and verifies a raw token. *identity.TokenService
// satisfies it.
type Validator interface {
	Validate(raw string) (*identity.TokenClaims, error)
}

// UserSource resolves a token subject to a stored user for the liveness
// re-check. identity.Users satisfies it.
type UserSource interface {
	Get(ctx context.Context, username string) (*identity.User, error)
}

type Config struct {
	// Filter skips the middleware when it returns true. Use it to exempt
	// the registration and login routes.
	Filter func(*fiber.Ctx) bool

	// Validator is required.
	Validator Validator

	// Users enables the liveness re-check: a decoded token whose subject no
	// longer exists or is deactivated is rejected. Leave nil to trust the
	// token alone.
	Users UserSource

	// TokenLookup is a comma-separated list of source:name extractors tried
	// in order. Defaults to DefaultTokenLookup.
	TokenLookup string

	// AuthScheme is the expected header prefix. Defaults to "Bearer".
	AuthScheme string

	// ContextKey is the locals key for the verified claims. Defaults to
	// DefaultContextKey.
	ContextKey string

	ErrorHandler   fiber.ErrorHandler
	SuccessHandler fiber.Handler
}

// New builds the middleware handler.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	extractors := buildExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := extractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, identity.ErrUnauthorized)
		}

		claims, err := cfg.Validator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, identity.ErrUnauthorized)
		}

		if cfg.Users != nil {
			user, err := cfg.Users.Get(c.UserContext(), claims.Subject())
			if err != nil || user.Deactivated {
				return cfg.ErrorHandler(c, identity.ErrUnauthorized)
			}
		}

		c.Locals(cfg.ContextKey, claims)
		return cfg.SuccessHandler(c)
	}
}

// Claims returns the verified claims stored by the middleware, nil when the
// request did not pass through it.
func Claims(c *fiber.Ctx, key ...string) *identity.TokenClaims {
	k := DefaultContextKey
	if len(key) > 0 {
		k = key[0]
	}
	claims, _ := c.Locals(k).(*identity.TokenClaims)
	return claims
}

// Subject returns the verified token subject, "" when absent.
func Subject(c *fiber.Ctx, key ...string) string {
	if claims := Claims(c, key...); claims != nil {
		return claims.Subject()
	}
	return ""
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("tokenauth: middleware configuration requires a Validator")
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = DefaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return cfg
}

type extractor func(c *fiber.Ctx) (string, error)

func extractRawToken(c *fiber.Ctx, extractors []extractor) (string, error) {
	var raw string
	var err error

	for _, extract := range extractors {
		raw, err = extract(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// buildExtractors parses a lookup string like
// "header:Authorization,cookie:jwt,query:auth_token" into ordered extractors.
func buildExtractors(tokenLookup, authScheme string) []extractor {
	extractors := make([]extractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}
		source := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		}
	}

	return extractors
}

func tokenFromHeader(header, authScheme string) extractor {
	scheme := strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(scheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], scheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrMalformed
	}
}

func tokenFromCookie(name string) extractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromQuery(param string) extractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}
