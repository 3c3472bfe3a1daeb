// Package docstore implements the identity.Store contract on a keyed-document
// schema over bun. Users and groups share the principals table and are told
// apart by a doc_type discriminator; a key that resolves to the wrong type
// reads as absent, never as a wrong-typed record.
package docstore

import (
	"context"
	"database/sql"

	"github.com/helmspoke/go-identity"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Store is the durable backend.
type Store struct {
	db       *bun.DB
	users    *usersRepo
	groups   *groupsRepo
	projects *projectsRepo
	tickets  *ticketsRepo
}

var _ identity.Store = (*Store)(nil)

// New wraps an existing bun handle.
func New(db *bun.DB) *Store {
	s := &Store{db: db}
	s.users = &usersRepo{store: s}
	s.groups = &groupsRepo{store: s}
	s.projects = &projectsRepo{store: s}
	s.tickets = &ticketsRepo{store: s}
	return s
}

// Open connects to the given DSN through the sqlite shim and returns a ready
// store. Callers still run Initialize before first use.
func Open(dsn string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, translate("store", dsn, err)
	}
	sqldb.SetMaxOpenConns(1)
	return New(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// DB exposes the underlying handle so callers can close it on shutdown.
func (s *Store) DB() *bun.DB { return s.db }

func (s *Store) Users() identity.Users       { return s.users }
func (s *Store) Groups() identity.Groups     { return s.groups }
func (s *Store) Projects() identity.Projects { return s.projects }
func (s *Store) Tickets() identity.Tickets   { return s.tickets }

// Initialize creates any missing tables. Running it against a provisioned
// database changes nothing.
func (s *Store) Initialize(ctx context.Context) error {
	models := []any{
		(*principalRow)(nil),
		(*projectRow)(nil),
		(*ticketRow)(nil),
		(*membershipEdge)(nil),
		(*parentOfEdge)(nil),
		(*ownsEdge)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return translate("store", "initialize", err)
		}
	}
	return nil
}

type txKey struct{}

// RunInTx brackets fn in a database transaction. Repositories reached through
// the same context join the transaction automatically.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *Store) idb(ctx context.Context) bun.IDB {
	if tx, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return tx
	}
	return s.db
}
