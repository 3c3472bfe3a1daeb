// serverd exposes the identity library over HTTP: open registration and
// login routes, bearer-token protected resource routes, and an api-key
// protected surface for trusted service clients.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/helmspoke/go-identity"
	"github.com/helmspoke/go-identity/docstore"
	"github.com/helmspoke/go-identity/memstore"
	"github.com/helmspoke/go-identity/middleware/apikey"
	"github.com/helmspoke/go-identity/middleware/tokenauth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.Initialize(ctx); err != nil {
		return err
	}

	tokens := identity.NewTokenService([]byte(cfg.SigningSecret),
		identity.WithTokenTTL(cfg.TokenTTL),
		identity.WithTokenIssuer("identity"),
	)
	auth := identity.NewAuthenticator(store, tokens).
		WithRegistrationOpen(cfg.RegistrationOpen)

	app, err := buildApp(cfg, store, tokens, auth)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Println("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func openStore(cfg *Config) (identity.Store, func(), error) {
	if cfg.Storage.Backend == "document" {
		store, err := docstore.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.DB().Close() }, nil
	}
	return memstore.New(), func() {}, nil
}

func buildApp(cfg *Config, store identity.Store, tokens *identity.TokenService, auth *identity.Authenticator) (*fiber.App, error) {
	a := &api{store: store, auth: auth}

	app := fiber.New(fiber.Config{
		AppName:               "identity serverd",
		DisableStartupMessage: false,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Post("/register", a.register)
	app.Post("/login", a.login)

	v1 := app.Group("/api/v1", tokenauth.New(tokenauth.Config{
		Validator: tokens,
		Users:     store.Users(),
	}))
	v1.Get("/me", a.whoami)
	v1.Post("/projects", a.createProject)
	v1.Get("/projects/:id", a.getProject)
	v1.Post("/projects/:id/access", a.grantProjectAccess)
	v1.Post("/projects/:id/tickets", a.createTicket)
	v1.Get("/tickets/:id", a.getTicket)

	if len(cfg.APIKeys) > 0 {
		keys, err := cfg.ServiceKeys()
		if err != nil {
			return nil, err
		}
		client := app.Group("/client", apikey.New(apikey.Config{Keys: keys}))
		client.Get("/users", a.listUsers)
	}

	return app, nil
}
