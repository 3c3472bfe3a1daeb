// Package storetest is a behavioral suite run against every Store backend.
// Backends must be observably identical through the contract, so both the
// volatile and the document backend execute the exact same assertions.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/helmspoke/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh, initialized, empty store for one test.
type Factory func(t *testing.T) identity.Store

// Run executes the full contract suite against the backend the factory
// produces.
func Run(t *testing.T, factory Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, factory(t)) })
	t.Run("groups", func(t *testing.T) { testGroups(t, factory(t)) })
	t.Run("projects", func(t *testing.T) { testProjects(t, factory(t)) })
	t.Run("tickets", func(t *testing.T) { testTickets(t, factory(t)) })
	t.Run("principal types do not alias", func(t *testing.T) { testPrincipalTyping(t, factory(t)) })
	t.Run("initialize is idempotent", func(t *testing.T) { testReinitialize(t, factory(t)) })
	t.Run("run in tx executes the callback", func(t *testing.T) { testRunInTx(t, factory(t)) })
}

func testUsers(t *testing.T, store identity.Store) {
	ctx := context.Background()
	users := store.Users()

	_, err := users.Get(ctx, "ghost")
	assert.True(t, identity.IsNotFound(err))

	alice := &identity.User{
		Username:     "alice99",
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Metadata:     map[string]any{"source": "signup"},
	}
	require.NoError(t, users.Create(ctx, alice))

	err = users.Create(ctx, &identity.User{Username: "alice99"})
	assert.True(t, identity.IsConflict(err))

	got, err := users.Get(ctx, "alice99")
	require.NoError(t, err)
	assert.Equal(t, "alice99", got.Username)
	assert.Equal(t, alice.PasswordHash, got.PasswordHash)
	assert.False(t, got.Deactivated)

	got.Deactivated = true
	require.NoError(t, users.Update(ctx, "alice99", got))

	got, err = users.Get(ctx, "alice99")
	require.NoError(t, err)
	assert.True(t, got.Deactivated)

	err = users.Update(ctx, "ghost", &identity.User{Username: "ghost"})
	assert.True(t, identity.IsNotFound(err))

	require.NoError(t, users.Create(ctx, &identity.User{Username: "bob"}))
	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, users.Delete(ctx, "bob"))
	err = users.Delete(ctx, "bob")
	assert.True(t, identity.IsNotFound(err))

	_, err = users.Get(ctx, "bob")
	assert.True(t, identity.IsNotFound(err))
}

func testGroups(t *testing.T, store identity.Store) {
	ctx := context.Background()
	groups := store.Groups()

	id := uuid.New()
	_, err := groups.Get(ctx, id)
	assert.True(t, identity.IsNotFound(err))

	crew := &identity.Group{ID: id, Name: "crew"}
	crew.AddMember("alice99").AddMember("bob")
	require.NoError(t, groups.Create(ctx, crew))

	err = groups.Create(ctx, &identity.Group{ID: id, Name: "crew"})
	assert.True(t, identity.IsConflict(err))

	got, err := groups.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "crew", got.Name)
	assert.True(t, got.HasMember("alice99"))
	assert.False(t, got.HasMember("ghost"))

	got.AddMember("carol")
	require.NoError(t, groups.Update(ctx, id, got))
	got, err = groups.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.HasMember("carol"))

	all, err := groups.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, groups.Delete(ctx, id))
	err = groups.Delete(ctx, id)
	assert.True(t, identity.IsNotFound(err))
}

func testProjects(t *testing.T, store identity.Store) {
	ctx := context.Background()
	projects := store.Projects()

	id := uuid.New()
	access := identity.NewAccessControlStore()
	access.Grant(identity.PermissionWrite, "alice99")

	proj := &identity.Project{ID: id, Name: "apollo", Access: access}
	require.NoError(t, projects.Create(ctx, proj))

	err := projects.Create(ctx, &identity.Project{ID: id})
	assert.True(t, identity.IsConflict(err))

	got, err := projects.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "apollo", got.Name)
	require.NotNil(t, got.Access)
	assert.Equal(t, identity.PermissionWrite, got.Access.Effective("alice99", nil))
	assert.Equal(t, identity.PermissionNone, got.Access.Effective("bob", nil))

	// Granting on a loaded store must persist through Update, even when the
	// store was rebuilt from a serialized document.
	got.Access.Grant(identity.PermissionRead, "bob")
	require.NoError(t, projects.Update(ctx, id, got))
	got, err = projects.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, identity.PermissionRead, got.Access.Effective("bob", nil))

	require.NoError(t, projects.Delete(ctx, id))
	_, err = projects.Get(ctx, id)
	assert.True(t, identity.IsNotFound(err))
}

func testTickets(t *testing.T, store identity.Store) {
	ctx := context.Background()
	tickets := store.Tickets()

	projectID := uuid.New()
	id := uuid.New()
	ticket := &identity.Ticket{
		ID:       id,
		Project:  projectID,
		Title:    "login broken",
		Body:     "bearer tokens rejected after rotation",
		Severity: identity.SeverityHigh,
		Creator:  "alice99",
		Mentions: []string{"bob"},
	}
	require.NoError(t, tickets.Create(ctx, ticket))

	err := tickets.Create(ctx, &identity.Ticket{ID: id})
	assert.True(t, identity.IsConflict(err))

	got, err := tickets.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "login broken", got.Title)
	assert.Equal(t, projectID, got.Project)
	assert.Equal(t, identity.SeverityHigh, got.Severity)
	assert.Equal(t, []string{"bob"}, got.Mentions)

	got.Assignee = "bob"
	require.NoError(t, tickets.Update(ctx, id, got))
	got, err = tickets.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Assignee)

	all, err := tickets.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, tickets.Delete(ctx, id))
	err = tickets.Delete(ctx, id)
	assert.True(t, identity.IsNotFound(err))
}

// A group's key must never resolve through the users contract and vice versa,
// even on backends where both principal types share storage.
func testPrincipalTyping(t *testing.T, store identity.Store) {
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, store.Groups().Create(ctx, &identity.Group{ID: id, Name: "ops"}))

	_, err := store.Users().Get(ctx, id.String())
	assert.True(t, identity.IsNotFound(err))

	err = store.Users().Update(ctx, id.String(), &identity.User{Username: id.String()})
	assert.True(t, identity.IsNotFound(err))

	err = store.Users().Delete(ctx, id.String())
	assert.True(t, identity.IsNotFound(err))

	got, err := store.Groups().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ops", got.Name)
}

func testReinitialize(t *testing.T, store identity.Store) {
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &identity.User{Username: "alice99"}))

	require.NoError(t, store.Initialize(ctx))

	got, err := store.Users().Get(ctx, "alice99")
	require.NoError(t, err)
	assert.Equal(t, "alice99", got.Username)
}

func testRunInTx(t *testing.T, store identity.Store) {
	ctx := context.Background()

	err := store.RunInTx(ctx, func(ctx context.Context) error {
		if err := store.Users().Create(ctx, &identity.User{Username: "alice99"}); err != nil {
			return err
		}
		return store.Users().Create(ctx, &identity.User{Username: "bob"})
	})
	require.NoError(t, err)

	all, err := store.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sentinel := identity.NewConflict("user", "probe")
	err = store.RunInTx(ctx, func(ctx context.Context) error {
		return sentinel
	})
	assert.True(t, identity.IsConflict(err))
}
