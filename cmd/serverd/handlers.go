package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/helmspoke/go-identity"
	"github.com/helmspoke/go-identity/middleware/tokenauth"
)

type api struct {
	store identity.Store
	auth  *identity.Authenticator
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *api) register(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return badRequest(c, "request body must be JSON with username and password")
	}

	user, err := a.auth.Register(c.UserContext(), creds.Username, creds.Password)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (a *api) login(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return badRequest(c, "request body must be JSON with username and password")
	}

	token, expiresAt, err := a.auth.Login(c.UserContext(), creds.Username, creds.Password)
	if err != nil {
		return sendError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"token": token, "expires_at": expiresAt})
}

func (a *api) whoami(c *fiber.Ctx) error {
	user, err := a.store.Users().Get(c.UserContext(), tokenauth.Subject(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(user)
}

type projectRequest struct {
	Name string `json:"name"`
}

// createProject grants the creating user full control over the new project.
func (a *api) createProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return badRequest(c, "request body must be JSON with a project name")
	}

	access := identity.NewAccessControlStore()
	access.Grant(identity.PermissionRoot, tokenauth.Subject(c))

	project := &identity.Project{
		ID:     uuid.New(),
		Name:   req.Name,
		Access: access,
	}
	if err := a.store.Projects().Create(c.UserContext(), project); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (a *api) getProject(c *fiber.Ctx) error {
	project, err := a.loadProject(c)
	if err != nil {
		return sendError(c, err)
	}

	if err := a.requirePermission(c, project.Access, identity.PermissionFetch); err != nil {
		return sendError(c, err)
	}
	return c.JSON(project)
}

type grantRequest struct {
	Permission identity.Permission `json:"permission"`
	Principals []string            `json:"principals"`
}

func (a *api) grantProjectAccess(c *fiber.Ctx) error {
	project, err := a.loadProject(c)
	if err != nil {
		return sendError(c, err)
	}

	if err := a.requirePermission(c, project.Access, identity.PermissionModify); err != nil {
		return sendError(c, err)
	}

	var req grantRequest
	if err := c.BodyParser(&req); err != nil || len(req.Principals) == 0 {
		return badRequest(c, "request body must be JSON with a permission and principals")
	}

	if project.Access == nil {
		project.Access = identity.NewAccessControlStore()
	}
	project.Access.Grant(req.Permission, req.Principals...)

	if err := a.store.Projects().Update(c.UserContext(), project.ID, project); err != nil {
		return sendError(c, err)
	}
	return c.JSON(project)
}

type ticketRequest struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Severity identity.Severity `json:"severity"`
	Assignee string            `json:"assignee"`
	Mentions []string          `json:"mentions"`
}

// createTicket requires create access on the owning project. The ticket
// starts with a copy of the project's access store so later project-level
// changes do not rewrite history on existing tickets.
func (a *api) createTicket(c *fiber.Ctx) error {
	project, err := a.loadProject(c)
	if err != nil {
		return sendError(c, err)
	}

	if err := a.requirePermission(c, project.Access, identity.PermissionCreate); err != nil {
		return sendError(c, err)
	}

	var req ticketRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return badRequest(c, "request body must be JSON with a ticket title")
	}

	ticket := &identity.Ticket{
		ID:       uuid.New(),
		Project:  project.ID,
		Title:    req.Title,
		Body:     req.Body,
		Severity: req.Severity,
		Creator:  tokenauth.Subject(c),
		Assignee: req.Assignee,
		Mentions: req.Mentions,
		Access:   project.Access.Clone(),
	}
	if err := a.store.Tickets().Create(c.UserContext(), ticket); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ticket)
}

func (a *api) getTicket(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "ticket id must be a UUID")
	}

	ticket, err := a.store.Tickets().Get(c.UserContext(), id)
	if err != nil {
		return sendError(c, err)
	}

	if err := a.requirePermission(c, ticket.Access, identity.PermissionFetch); err != nil {
		return sendError(c, err)
	}
	return c.JSON(ticket)
}

// listUsers backs the trusted service surface guarded by the api-key
// middleware.
func (a *api) listUsers(c *fiber.Ctx) error {
	users, err := a.store.Users().List(c.UserContext())
	if err != nil {
		return sendError(c, err)
	}

	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.Username)
	}
	return c.JSON(fiber.Map{"usernames": names})
}

func (a *api) loadProject(c *fiber.Ctx) (*identity.Project, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, errors.New("project id must be a UUID", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}
	return a.store.Projects().Get(c.UserContext(), id)
}

// requirePermission checks the subject's effective permission, folding in the
// groups the subject belongs to. Denial is the uniform rejection.
func (a *api) requirePermission(c *fiber.Ctx, access *identity.AccessControlStore, perm identity.Permission) error {
	subject := tokenauth.Subject(c)

	groups, err := a.groupsFor(c.UserContext(), subject)
	if err != nil {
		return err
	}

	if !access.Effective(subject, groups).Has(perm) {
		return identity.ErrUnauthorized
	}
	return nil
}

func (a *api) groupsFor(ctx context.Context, subject string) ([]string, error) {
	all, err := a.store.Groups().List(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, group := range all {
		if group.HasMember(subject) {
			ids = append(ids, group.ID.String())
		}
	}
	return ids, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// sendError maps the error taxonomy onto HTTP statuses. Authorization
// failures stay deliberately vague.
func sendError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	status := fiber.StatusInternalServerError
	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		status = fiber.StatusBadRequest
	case errors.CategoryAuth:
		status = fiber.StatusUnauthorized
		if identity.IsRegistrationDisabled(err) {
			status = fiber.StatusForbidden
		}
	case errors.CategoryAuthz:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.CategoryNotFound:
		status = fiber.StatusNotFound
	case errors.CategoryConflict:
		status = fiber.StatusConflict
	}

	msg := richErr.Message
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
