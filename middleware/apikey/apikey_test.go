package apikey_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/helmspoke/go-identity/middleware/apikey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(apikey.New(apikey.Config{
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		Keys: map[string]string{
			"reporting-key-1": "reporting",
			"ingest-key-2":    "ingest",
		},
	}))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/caller", func(c *fiber.Ctx) error {
		return c.SendString(apikey.Principal(c))
	})
	return app
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

func TestAPIKeyHeader(t *testing.T) {
	app := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/caller", nil)
	req.Header.Set(apikey.HeaderAPIKey, "reporting-key-1")

	status, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "reporting", body)
}

func TestBearerFallback(t *testing.T) {
	app := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/caller", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer ingest-key-2")

	status, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ingest", body)
}

func TestDedicatedHeaderWinsOverBearer(t *testing.T) {
	app := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/caller", nil)
	req.Header.Set(apikey.HeaderAPIKey, "reporting-key-1")
	req.Header.Set(fiber.HeaderAuthorization, "Bearer ingest-key-2")

	status, body := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "reporting", body)
}

func TestRejections(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name    string
		arrange func(req *http.Request)
	}{
		{
			name:    "no key",
			arrange: func(req *http.Request) {},
		},
		{
			name: "unknown key",
			arrange: func(req *http.Request) {
				req.Header.Set(apikey.HeaderAPIKey, "not-on-the-list")
			},
		},
		{
			name: "unknown bearer key",
			arrange: func(req *http.Request) {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer not-on-the-list")
			},
		},
		{
			name: "wrong scheme",
			arrange: func(req *http.Request) {
				req.Header.Set(fiber.HeaderAuthorization, "Basic reporting-key-1")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/caller", nil)
			tt.arrange(req)

			status, body := doRequest(t, app, req)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, "unauthorized")
		})
	}
}

func TestFilterExemptsRoutes(t *testing.T) {
	app := newApp(t)

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}

func TestEmptyKeysPanics(t *testing.T) {
	assert.Panics(t, func() {
		apikey.New()
	})
}
