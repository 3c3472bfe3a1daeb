package docstore

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/helmspoke/go-identity"
)

type groupsRepo struct {
	store *Store
}

func decodeGroup(payload []byte) (*identity.Group, error) {
	group := new(identity.Group)
	if err := json.Unmarshal(payload, group); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode group document")
	}
	return group, nil
}

func (r *groupsRepo) Get(ctx context.Context, id uuid.UUID) (*identity.Group, error) {
	key := id.String()
	row := new(principalRow)
	err := r.store.idb(ctx).NewSelect().
		Model(row).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		return nil, translate("group", key, err)
	}
	if row.DocType != docTypeGroup {
		return nil, identity.NewNotFound("group", key)
	}
	return decodeGroup(row.Payload)
}

func (r *groupsRepo) Create(ctx context.Context, group *identity.Group) error {
	key := group.ID.String()
	payload, err := json.Marshal(group)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode group document")
	}
	row := &principalRow{Key: key, DocType: docTypeGroup, Payload: payload}
	if _, err := r.store.idb(ctx).NewInsert().Model(row).Exec(ctx); err != nil {
		return translate("group", key, err)
	}
	return nil
}

func (r *groupsRepo) Update(ctx context.Context, id uuid.UUID, group *identity.Group) error {
	key := id.String()
	payload, err := json.Marshal(group)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode group document")
	}
	row := &principalRow{Key: key, DocType: docTypeGroup, Payload: payload}
	res, err := r.store.idb(ctx).NewUpdate().
		Model(row).
		WherePK().
		Where("doc_type = ?", docTypeGroup).
		Exec(ctx)
	if err != nil {
		return translate("group", key, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("group", key)
	}
	return nil
}

func (r *groupsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	key := id.String()
	res, err := r.store.idb(ctx).NewDelete().
		Model((*principalRow)(nil)).
		Where("key = ?", key).
		Where("doc_type = ?", docTypeGroup).
		Exec(ctx)
	if err != nil {
		return translate("group", key, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("group", key)
	}
	return nil
}

func (r *groupsRepo) List(ctx context.Context) ([]*identity.Group, error) {
	var rows []principalRow
	err := r.store.idb(ctx).NewSelect().
		Model(&rows).
		Where("doc_type = ?", docTypeGroup).
		Scan(ctx)
	if err != nil {
		return nil, translate("group", "*", err)
	}

	out := make([]*identity.Group, 0, len(rows))
	for _, row := range rows {
		group, err := decodeGroup(row.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}
