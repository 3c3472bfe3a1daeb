package tokenauth_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/helmspoke/go-identity"
	"github.com/helmspoke/go-identity/memstore"
	"github.com/helmspoke/go-identity/middleware/tokenauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signingKey = []byte("test-signing-key")

type fixture struct {
	app    *fiber.App
	tokens *identity.TokenService
	store  identity.Store
}

func newFixture(t *testing.T, opts ...identity.TokenOption) *fixture {
	t.Helper()

	store := memstore.New()
	tokens := identity.NewTokenService(signingKey, opts...)

	app := fiber.New()
	app.Use(tokenauth.New(tokenauth.Config{
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/login"
		},
		Validator: tokens,
		Users:     store.Users(),
	}))
	app.Get("/login", func(c *fiber.Ctx) error {
		return c.SendString("open")
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(tokenauth.Subject(c))
	})

	return &fixture{app: app, tokens: tokens, store: store}
}

func (f *fixture) addUser(t *testing.T, username string, deactivated bool) string {
	t.Helper()

	require.NoError(t, f.store.Users().Create(context.Background(), &identity.User{
		Username:    username,
		Deactivated: deactivated,
	}))

	token, _, err := f.tokens.Issue(username)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestBearerHeaderGrantsAccess(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "alice99", false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	status, body := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice99", body)
}

func TestCookieFallback(t *testing.T) {
	f := newFixture(t)
	token := f.addUser(t, "alice99", false)

	for _, cookie := range []string{"token", "jwt"} {
		t.Run("cookie "+cookie, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.AddCookie(&http.Cookie{Name: cookie, Value: token})

			status, body := doRequest(t, f.app, req)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "alice99", body)
		})
	}
}

func TestHeaderTakesPrecedenceOverCookie(t *testing.T) {
	f := newFixture(t)
	aliceToken := f.addUser(t, "alice99", false)
	bobToken := f.addUser(t, "bob", false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+aliceToken)
	req.AddCookie(&http.Cookie{Name: "token", Value: bobToken})

	status, body := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice99", body)
}

func TestUniformRejections(t *testing.T) {
	f := newFixture(t)
	deactivatedToken := f.addUser(t, "bob", true)

	orphanToken, _, err := f.tokens.Issue("ghost")
	require.NoError(t, err)

	foreignToken, _, err := identity.NewTokenService([]byte("other-key")).Issue("alice99")
	require.NoError(t, err)

	tests := []struct {
		name    string
		arrange func(req *http.Request)
	}{
		{
			name:    "no credential at all",
			arrange: func(req *http.Request) {},
		},
		{
			name: "wrong auth scheme",
			arrange: func(req *http.Request) {
				req.Header.Set(fiber.HeaderAuthorization, "Basic dXNlcjpwYXNz")
			},
		},
		{
			name: "garbage token",
			arrange: func(req *http.Request) {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer not.a.token")
			},
		},
		{
			name: "token signed with another key",
			arrange: func(req *http.Request) {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+foreignToken)
			},
		},
		{
			name: "subject no longer exists",
			arrange: func(req *http.Request) {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+orphanToken)
			},
		},
		{
			name: "subject deactivated",
			arrange: func(req *http.Request) {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+deactivatedToken)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.arrange(req)

			status, body := doRequest(t, f.app, req)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, "unauthorized")
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	f := newFixture(t, identity.WithTokenTTL(time.Second))

	token, _, err := f.tokens.IssueAt("alice99", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, f.store.Users().Create(context.Background(), &identity.User{Username: "alice99"}))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	status, _ := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFilterExemptsRoutes(t *testing.T) {
	f := newFixture(t)

	status, body := doRequest(t, f.app, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "open", body)
}

func TestSubjectIsEmptyOutsideMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("[" + tokenauth.Subject(c) + "]")
	})

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", body)
}

func TestMissingValidatorPanics(t *testing.T) {
	assert.Panics(t, func() {
		tokenauth.New()
	})
}

func TestQueryExtractor(t *testing.T) {
	store := memstore.New()
	tokens := identity.NewTokenService(signingKey)

	app := fiber.New()
	app.Use(tokenauth.New(tokenauth.Config{
		Validator:   tokens,
		Users:       store.Users(),
		TokenLookup: "query:auth_token",
	}))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(tokenauth.Subject(c))
	})

	require.NoError(t, store.Users().Create(context.Background(), &identity.User{Username: "alice99"}))
	token, _, err := tokens.Issue("alice99")
	require.NoError(t, err)

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/whoami?auth_token="+token, nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice99", body)

	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, status)
}
