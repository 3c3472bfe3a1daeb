package docstore

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/helmspoke/go-identity"
)

type ticketsRepo struct {
	store *Store
}

func decodeTicket(payload []byte) (*identity.Ticket, error) {
	ticket := new(identity.Ticket)
	if err := json.Unmarshal(payload, ticket); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode ticket document")
	}
	return ticket, nil
}

func (r *ticketsRepo) Get(ctx context.Context, id uuid.UUID) (*identity.Ticket, error) {
	key := id.String()
	row := new(ticketRow)
	err := r.store.idb(ctx).NewSelect().
		Model(row).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		return nil, translate("ticket", key, err)
	}
	return decodeTicket(row.Payload)
}

func (r *ticketsRepo) Create(ctx context.Context, ticket *identity.Ticket) error {
	key := ticket.ID.String()
	payload, err := json.Marshal(ticket)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode ticket document")
	}
	row := &ticketRow{Key: key, Payload: payload}
	if _, err := r.store.idb(ctx).NewInsert().Model(row).Exec(ctx); err != nil {
		return translate("ticket", key, err)
	}
	return nil
}

func (r *ticketsRepo) Update(ctx context.Context, id uuid.UUID, ticket *identity.Ticket) error {
	key := id.String()
	payload, err := json.Marshal(ticket)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode ticket document")
	}
	row := &ticketRow{Key: key, Payload: payload}
	res, err := r.store.idb(ctx).NewUpdate().
		Model(row).
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate("ticket", key, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("ticket", key)
	}
	return nil
}

func (r *ticketsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	key := id.String()
	res, err := r.store.idb(ctx).NewDelete().
		Model((*ticketRow)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return translate("ticket", key, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("ticket", key)
	}
	return nil
}

func (r *ticketsRepo) List(ctx context.Context) ([]*identity.Ticket, error) {
	var rows []ticketRow
	err := r.store.idb(ctx).NewSelect().
		Model(&rows).
		Scan(ctx)
	if err != nil {
		return nil, translate("ticket", "*", err)
	}

	out := make([]*identity.Ticket, 0, len(rows))
	for _, row := range rows {
		ticket, err := decodeTicket(row.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, ticket)
	}
	return out, nil
}
