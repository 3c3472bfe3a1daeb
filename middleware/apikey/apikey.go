// Package apikey guards fiber routes with a static key allow-list, meant for
// trusted service-to-service clients rather than interactive users.
package apikey

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderAPIKey is checked before the Authorization header.
const HeaderAPIKey = "X-Api-Key"

// DefaultContextKey is where the matched principal name lands in the request
// locals.
const DefaultContextKey = "service"

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool

	// Keys maps each accepted key to the service principal name annotated on
	// matching requests. Required and non-empty.
	Keys map[string]string

	// ContextKey is the locals key for the principal name. Defaults to
	// DefaultContextKey.
	ContextKey string

	ErrorHandler   fiber.ErrorHandler
	SuccessHandler fiber.Handler
}

// New builds the middleware handler.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		key := extractKey(c)
		principal, ok := cfg.Keys[key]
		if key == "" || !ok {
			return cfg.ErrorHandler(c, fiber.ErrUnauthorized)
		}

		c.Locals(cfg.ContextKey, principal)
		return cfg.SuccessHandler(c)
	}
}

// Principal returns the service name annotated by the middleware, "" when the
// request did not pass through it.
func Principal(c *fiber.Ctx, key ...string) string {
	k := DefaultContextKey
	if len(key) > 0 {
		k = key[0]
	}
	principal, _ := c.Locals(k).(string)
	return principal
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if len(cfg.Keys) == 0 {
		panic("apikey: middleware configuration requires at least one key")
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

// extractKey prefers the dedicated header, falling back to a bearer token so
// generic HTTP clients keep working.
func extractKey(c *fiber.Ctx) string {
	if key := strings.TrimSpace(c.Get(HeaderAPIKey)); key != "" {
		return key
	}

	a := c.Get(fiber.HeaderAuthorization)
	const scheme = "Bearer"
	if len(a) > len(scheme)+1 && strings.EqualFold(a[:len(scheme)], scheme) {
		return strings.TrimSpace(a[len(scheme):])
	}
	return ""
}
