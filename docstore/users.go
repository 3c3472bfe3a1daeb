package docstore

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-errors"
	"github.com/helmspoke/go-identity"
)

// userDoc is the storage envelope. The public model hides the password hash
// from JSON, so the envelope carries it explicitly.
type userDoc struct {
	identity.User
	PasswordHash string `json:"password_hash,omitempty"`
}

func encodeUser(user *identity.User) ([]byte, error) {
	payload, err := json.Marshal(userDoc{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "encode user document")
	}
	return payload, nil
}

func decodeUser(payload []byte) (*identity.User, error) {
	var doc userDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode user document")
	}
	user := doc.User
	user.PasswordHash = doc.PasswordHash
	return &user, nil
}

type usersRepo struct {
	store *Store
}

func (r *usersRepo) Get(ctx context.Context, username string) (*identity.User, error) {
	row := new(principalRow)
	err := r.store.idb(ctx).NewSelect().
		Model(row).
		Where("key = ?", username).
		Scan(ctx)
	if err != nil {
		return nil, translate("user", username, err)
	}
	if row.DocType != docTypeUser {
		return nil, identity.NewNotFound("user", username)
	}
	return decodeUser(row.Payload)
}

func (r *usersRepo) Create(ctx context.Context, user *identity.User) error {
	payload, err := encodeUser(user)
	if err != nil {
		return err
	}
	row := &principalRow{Key: user.Username, DocType: docTypeUser, Payload: payload}
	if _, err := r.store.idb(ctx).NewInsert().Model(row).Exec(ctx); err != nil {
		return translate("user", user.Username, err)
	}
	return nil
}

func (r *usersRepo) Update(ctx context.Context, username string, user *identity.User) error {
	payload, err := encodeUser(user)
	if err != nil {
		return err
	}
	row := &principalRow{Key: username, DocType: docTypeUser, Payload: payload}
	res, err := r.store.idb(ctx).NewUpdate().
		Model(row).
		WherePK().
		Where("doc_type = ?", docTypeUser).
		Exec(ctx)
	if err != nil {
		return translate("user", username, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("user", username)
	}
	return nil
}

func (r *usersRepo) Delete(ctx context.Context, username string) error {
	res, err := r.store.idb(ctx).NewDelete().
		Model((*principalRow)(nil)).
		Where("key = ?", username).
		Where("doc_type = ?", docTypeUser).
		Exec(ctx)
	if err != nil {
		return translate("user", username, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("user", username)
	}
	return nil
}

func (r *usersRepo) List(ctx context.Context) ([]*identity.User, error) {
	var rows []principalRow
	err := r.store.idb(ctx).NewSelect().
		Model(&rows).
		Where("doc_type = ?", docTypeUser).
		Scan(ctx)
	if err != nil {
		return nil, translate("user", "*", err)
	}

	out := make([]*identity.User, 0, len(rows))
	for _, row := range rows {
		user, err := decodeUser(row.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, nil
}
