// Package memstore implements the identity.Store contract on lock-guarded
// in-process maps. Data does not survive a restart; uniqueness and existence
// checks are atomic under each resource's lock.
package memstore

import (
	"context"

	"github.com/helmspoke/go-identity"
)

// Store is the volatile backend. One instance owns all the guarded maps;
// nothing is ambient or package-global.
type Store struct {
	users    *usersRepo
	groups   *groupsRepo
	projects *projectsRepo
	tickets  *ticketsRepo
}

var _ identity.Store = (*Store)(nil)

// New creates an empty volatile store.
func New() *Store {
	return &Store{
		users:    newUsersRepo(),
		groups:   newGroupsRepo(),
		projects: newProjectsRepo(),
		tickets:  newTicketsRepo(),
	}
}

func (s *Store) Users() identity.Users       { return s.users }
func (s *Store) Groups() identity.Groups     { return s.groups }
func (s *Store) Projects() identity.Projects { return s.projects }
func (s *Store) Tickets() identity.Tickets   { return s.tickets }

// Initialize is a no-op; the maps exist from construction.
func (s *Store) Initialize(ctx context.Context) error {
	return nil
}

// RunInTx degrades to sequential execution. Individual operations stay atomic
// under their per-resource locks; there is no multi-statement transaction to
// offer.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn(ctx)
	}
}
