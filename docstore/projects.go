package docstore

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/helmspoke/go-identity"
)

type projectsRepo struct {
	store *Store
}

func decodeProject(payload []byte) (*identity.Project, error) {
	project := new(identity.Project)
	if err := json.Unmarshal(payload, project); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "decode project document")
	}
	return project, nil
}

func (r *projectsRepo) Get(ctx context.Context, id uuid.UUID) (*identity.Project, error) {
	key := id.String()
	row := new(projectRow)
	err := r.store.idb(ctx).NewSelect().
		Model(row).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		return nil, translate("project", key, err)
	}
	return decodeProject(row.Payload)
}

func (r *projectsRepo) Create(ctx context.Context, project *identity.Project) error {
	key := project.ID.String()
	payload, err := json.Marshal(project)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode project document")
	}
	row := &projectRow{Key: key, Payload: payload}
	if _, err := r.store.idb(ctx).NewInsert().Model(row).Exec(ctx); err != nil {
		return translate("project", key, err)
	}
	return nil
}

func (r *projectsRepo) Update(ctx context.Context, id uuid.UUID, project *identity.Project) error {
	key := id.String()
	payload, err := json.Marshal(project)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode project document")
	}
	row := &projectRow{Key: key, Payload: payload}
	res, err := r.store.idb(ctx).NewUpdate().
		Model(row).
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate("project", key, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("project", key)
	}
	return nil
}

func (r *projectsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	key := id.String()
	res, err := r.store.idb(ctx).NewDelete().
		Model((*projectRow)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return translate("project", key, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return identity.NewNotFound("project", key)
	}
	return nil
}

func (r *projectsRepo) List(ctx context.Context) ([]*identity.Project, error) {
	var rows []projectRow
	err := r.store.idb(ctx).NewSelect().
		Model(&rows).
		Scan(ctx)
	if err != nil {
		return nil, translate("project", "*", err)
	}

	out := make([]*identity.Project, 0, len(rows))
	for _, row := range rows {
		project, err := decodeProject(row.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, project)
	}
	return out, nil
}
