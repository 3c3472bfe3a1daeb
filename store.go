package identity

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Users is the storage sub-contract for principals that authenticate.
// Usernames are the natural key.
type Users interface {
	Get(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, username string, user *User) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*User, error)
}

// Groups is the storage sub-contract for group principals.
type Groups interface {
	Get(ctx context.Context, id uuid.UUID) (*Group, error)
	Create(ctx context.Context, group *Group) error
	Update(ctx context.Context, id uuid.UUID, group *Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Group, error)
}

// Projects is the storage sub-contract for projects.
type Projects interface {
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, id uuid.UUID, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Project, error)
}

// Tickets is the storage sub-contract for tickets.
type Tickets interface {
	Get(ctx context.Context, id uuid.UUID) (*Ticket, error)
	Create(ctx context.Context, ticket *Ticket) error
	Update(ctx context.Context, id uuid.UUID, ticket *Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Ticket, error)
}

// Store is the storage-agnostic repository contract. A concrete backend is
// constructed once at process start and injected everywhere as this
// interface; business logic never branches on backend identity. Callers must
// be unable to tell backends apart except through latency and persistence.
type Store interface {
	Users() Users
	Groups() Groups
	Projects() Projects
	Tickets() Tickets

	// Initialize provisions missing backing structures. Idempotent: a no-op
	// when everything is already in place.
	Initialize(ctx context.Context) error

	// RunInTx brackets fn in a transaction where the backend supports one and
	// degrades to plain sequential execution where it does not. Callers stay
	// backend-agnostic either way.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	TextCodeNotFound = "record_not_found"
	TextCodeConflict = "record_conflict"
)

// NewNotFound builds the shared not-found rejection for a record kind and key.
func NewNotFound(kind, key string) *errors.Error {
	return errors.New(kind+" not found", errors.CategoryNotFound).
		WithTextCode(TextCodeNotFound).
		WithCode(errors.CodeNotFound).
		WithMetadata(map[string]any{"kind": kind, "key": key})
}

// NewConflict builds the shared uniqueness-violation rejection.
func NewConflict(kind, key string) *errors.Error {
	return errors.New(kind+" already exists", errors.CategoryConflict).
		WithTextCode(TextCodeConflict).
		WithCode(errors.CodeConflict).
		WithMetadata(map[string]any{"kind": kind, "key": key})
}

// IsNotFound reports whether err is the shared not-found rejection.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

// IsConflict reports whether err is the shared uniqueness-violation rejection.
func IsConflict(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryConflict
}
