package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/helmspoke/go-identity"
)

// table is a lock-guarded map keyed by the resource's natural identifier.
// Reads and read-modify-write sequences are atomic under the one lock.
type table[T any] struct {
	mu   sync.RWMutex
	kind string
	rows map[string]T
}

func newTable[T any](kind string) *table[T] {
	return &table[T]{kind: kind, rows: make(map[string]T)}
}

func (t *table[T]) get(key string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[key]
	if !ok {
		var zero T
		return zero, identity.NewNotFound(t.kind, key)
	}
	return row, nil
}

func (t *table[T]) create(key string, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[key]; exists {
		return identity.NewConflict(t.kind, key)
	}
	t.rows[key] = row
	return nil
}

func (t *table[T]) update(key string, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[key]; !exists {
		return identity.NewNotFound(t.kind, key)
	}
	t.rows[key] = row
	return nil
}

func (t *table[T]) delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[key]; !exists {
		return identity.NewNotFound(t.kind, key)
	}
	delete(t.rows, key)
	return nil
}

func (t *table[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row)
	}
	return out
}

// Rows are cloned on the way in and out so callers never alias the store's
// own copy; backends must be indistinguishable and the document backend
// round-trips through serialization.

type usersRepo struct {
	table *table[*identity.User]
}

func newUsersRepo() *usersRepo {
	return &usersRepo{table: newTable[*identity.User]("user")}
}

func (r *usersRepo) Get(ctx context.Context, username string) (*identity.User, error) {
	row, err := r.table.get(username)
	if err != nil {
		return nil, err
	}
	return cloneUser(row), nil
}

func (r *usersRepo) Create(ctx context.Context, user *identity.User) error {
	return r.table.create(user.Username, cloneUser(user))
}

func (r *usersRepo) Update(ctx context.Context, username string, user *identity.User) error {
	return r.table.update(username, cloneUser(user))
}

func (r *usersRepo) Delete(ctx context.Context, username string) error {
	return r.table.delete(username)
}

func (r *usersRepo) List(ctx context.Context) ([]*identity.User, error) {
	rows := r.table.list()
	out := make([]*identity.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneUser(row))
	}
	return out, nil
}

type groupsRepo struct {
	table *table[*identity.Group]
}

func newGroupsRepo() *groupsRepo {
	return &groupsRepo{table: newTable[*identity.Group]("group")}
}

func (r *groupsRepo) Get(ctx context.Context, id uuid.UUID) (*identity.Group, error) {
	row, err := r.table.get(id.String())
	if err != nil {
		return nil, err
	}
	return cloneGroup(row), nil
}

func (r *groupsRepo) Create(ctx context.Context, group *identity.Group) error {
	return r.table.create(group.ID.String(), cloneGroup(group))
}

func (r *groupsRepo) Update(ctx context.Context, id uuid.UUID, group *identity.Group) error {
	return r.table.update(id.String(), cloneGroup(group))
}

func (r *groupsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.table.delete(id.String())
}

func (r *groupsRepo) List(ctx context.Context) ([]*identity.Group, error) {
	rows := r.table.list()
	out := make([]*identity.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneGroup(row))
	}
	return out, nil
}

type projectsRepo struct {
	table *table[*identity.Project]
}

func newProjectsRepo() *projectsRepo {
	return &projectsRepo{table: newTable[*identity.Project]("project")}
}

func (r *projectsRepo) Get(ctx context.Context, id uuid.UUID) (*identity.Project, error) {
	row, err := r.table.get(id.String())
	if err != nil {
		return nil, err
	}
	return cloneProject(row), nil
}

func (r *projectsRepo) Create(ctx context.Context, project *identity.Project) error {
	return r.table.create(project.ID.String(), cloneProject(project))
}

func (r *projectsRepo) Update(ctx context.Context, id uuid.UUID, project *identity.Project) error {
	return r.table.update(id.String(), cloneProject(project))
}

func (r *projectsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.table.delete(id.String())
}

func (r *projectsRepo) List(ctx context.Context) ([]*identity.Project, error) {
	rows := r.table.list()
	out := make([]*identity.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneProject(row))
	}
	return out, nil
}

type ticketsRepo struct {
	table *table[*identity.Ticket]
}

func newTicketsRepo() *ticketsRepo {
	return &ticketsRepo{table: newTable[*identity.Ticket]("ticket")}
}

func (r *ticketsRepo) Get(ctx context.Context, id uuid.UUID) (*identity.Ticket, error) {
	row, err := r.table.get(id.String())
	if err != nil {
		return nil, err
	}
	return cloneTicket(row), nil
}

func (r *ticketsRepo) Create(ctx context.Context, ticket *identity.Ticket) error {
	return r.table.create(ticket.ID.String(), cloneTicket(ticket))
}

func (r *ticketsRepo) Update(ctx context.Context, id uuid.UUID, ticket *identity.Ticket) error {
	return r.table.update(id.String(), cloneTicket(ticket))
}

func (r *ticketsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.table.delete(id.String())
}

func (r *ticketsRepo) List(ctx context.Context) ([]*identity.Ticket, error) {
	rows := r.table.list()
	out := make([]*identity.Ticket, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneTicket(row))
	}
	return out, nil
}
