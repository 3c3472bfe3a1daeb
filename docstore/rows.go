package docstore

import (
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/helmspoke/go-identity"
	"github.com/uptrace/bun"
)

const (
	docTypeUser  = "user"
	docTypeGroup = "group"
)

// principalRow holds one authenticatable or access-control principal. Users
// and groups share the table; DocType is verified on every read.
type principalRow struct {
	bun.BaseModel `bun:"table:principals,alias:p"`

	Key     string `bun:"key,pk"`
	DocType string `bun:"doc_type,notnull"`
	Payload []byte `bun:"payload,notnull"`
}

type projectRow struct {
	bun.BaseModel `bun:"table:projects,alias:pj"`

	Key     string `bun:"key,pk"`
	Payload []byte `bun:"payload,notnull"`
}

type ticketRow struct {
	bun.BaseModel `bun:"table:tickets,alias:t"`

	Key     string `bun:"key,pk"`
	Payload []byte `bun:"payload,notnull"`
}

// Edge tables mirror the relations implied by the documents (group
// membership, ticket-to-project grouping, project ownership). Initialize
// provisions them for graph-style queries; the repository contract itself
// never reads them.
type membershipEdge struct {
	bun.BaseModel `bun:"table:membership,alias:m"`

	From string `bun:"from_key,pk"`
	To   string `bun:"to_key,pk"`
}

type parentOfEdge struct {
	bun.BaseModel `bun:"table:parent_of,alias:po"`

	From string `bun:"from_key,pk"`
	To   string `bun:"to_key,pk"`
}

type ownsEdge struct {
	bun.BaseModel `bun:"table:owns,alias:o"`

	From string `bun:"from_key,pk"`
	To   string `bun:"to_key,pk"`
}

// translate maps driver errors onto the shared repository taxonomy.
func translate(kind, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return identity.NewNotFound(kind, key)
	}
	if isUniqueViolation(err) {
		return identity.NewConflict(kind, key)
	}
	return errors.Wrap(err, errors.CategoryInternal, kind+" storage failure").
		WithCode(errors.CodeInternal).
		WithMetadata(map[string]any{"kind": kind, "key": key})
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
