package postgres

import (
	"context"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
)

const workspaceColumns = `id, owner_id, name, description, is_public, need_approval, is_active, deleted_at, created_at, updated_at`

func scanWorkspace(row interface{ Scan(...any) error }) (models.Workspace, error) {
	var w models.Workspace
	err := row.Scan(
		&w.ID,
		&w.OwnerID,
		&w.Name,
		&w.Description,
		&w.IsPublic,
		&w.NeedApproval,
		&w.Active,
		&w.DeletedAt,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	return w, err
}

func (r *repo) GetWorkspace(ctx context.Context, id uuid.UUID) (models.Workspace, error) {
	w, err := scanWorkspace(r.q.QueryRowContext(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1`, id))
	if err != nil {
		return models.Workspace{}, mapPostgresError(err)
	}
	return w, nil
}

func (r *repo) ListWorkspacesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Workspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = ANY($1::uuid[]) ORDER BY created_at`,
		uuidStrings(ids))
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []models.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *repo) CreateWorkspace(ctx context.Context, w models.Workspace) error {
	const q = `
INSERT INTO workspaces (` + workspaceColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err := r.q.ExecContext(ctx, q,
		w.ID,
		w.OwnerID,
		w.Name,
		w.Description,
		w.IsPublic,
		w.NeedApproval,
		w.Active,
		w.DeletedAt,
		w.CreatedAt,
		w.UpdatedAt,
	)
	return mapPostgresError(err)
}

func (r *repo) UpdateWorkspace(ctx context.Context, w models.Workspace) error {
	const q = `
UPDATE workspaces
SET owner_id = $2, name = $3, description = $4, is_public = $5, need_approval = $6,
    is_active = $7, deleted_at = $8, updated_at = $9
WHERE id = $1
`
	res, err := r.q.ExecContext(ctx, q,
		w.ID,
		w.OwnerID,
		w.Name,
		w.Description,
		w.IsPublic,
		w.NeedApproval,
		w.Active,
		w.DeletedAt,
		w.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}
	return expectOneRow(res)
}
