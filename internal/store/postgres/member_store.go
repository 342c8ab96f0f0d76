package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
)

const memberColumns = `id, workspace_id, user_id, role, is_default, is_active, deleted_at, joined_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	err := row.Scan(
		&m.ID,
		&m.WorkspaceID,
		&m.UserID,
		&m.Role,
		&m.IsDefault,
		&m.Active,
		&m.DeletedAt,
		&m.JoinedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func collectMembers(rows *sql.Rows, err error) ([]models.WorkspaceMember, error) {
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []models.WorkspaceMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) getMemberWhere(ctx context.Context, where string, args ...any) (models.WorkspaceMember, error) {
	m, err := scanMember(r.q.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM workspace_members WHERE `+where, args...))
	if err != nil {
		return models.WorkspaceMember{}, mapPostgresError(err)
	}
	return m, nil
}

func (r *repo) GetMember(ctx context.Context, id uuid.UUID) (models.WorkspaceMember, error) {
	return r.getMemberWhere(ctx, `id = $1`, id)
}

func (r *repo) GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (models.WorkspaceMember, error) {
	return r.getMemberWhere(ctx, `workspace_id = $1 AND user_id = $2`, workspaceID, userID)
}

func (r *repo) GetDefaultMembership(ctx context.Context, userID uuid.UUID) (models.WorkspaceMember, error) {
	return r.getMemberWhere(ctx, `user_id = $1 AND is_default AND is_active`, userID)
}

func (r *repo) ListMembersByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	const q = `SELECT ` + memberColumns + ` FROM workspace_members WHERE workspace_id = $1 ORDER BY joined_at, id`
	return collectMembers(r.q.QueryContext(ctx, q, workspaceID))
}

func (r *repo) ListActiveMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.WorkspaceMember, error) {
	const q = `SELECT ` + memberColumns + ` FROM workspace_members WHERE user_id = $1 AND is_active ORDER BY joined_at, id`
	return collectMembers(r.q.QueryContext(ctx, q, userID))
}

func (r *repo) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE workspace_members SET is_default = FALSE, updated_at = now() WHERE user_id = $1 AND is_default`, userID)
	return mapPostgresError(err)
}

func (r *repo) CreateMember(ctx context.Context, m models.WorkspaceMember) error {
	const q = `
INSERT INTO workspace_members (` + memberColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.q.ExecContext(ctx, q,
		m.ID,
		m.WorkspaceID,
		m.UserID,
		string(m.Role),
		m.IsDefault,
		m.Active,
		m.DeletedAt,
		m.JoinedAt,
		m.UpdatedAt,
	)
	return mapPostgresError(err)
}

func (r *repo) UpdateMember(ctx context.Context, m models.WorkspaceMember) error {
	const q = `
UPDATE workspace_members
SET role = $2, is_default = $3, is_active = $4, deleted_at = $5, joined_at = $6, updated_at = $7
WHERE id = $1
`
	res, err := r.q.ExecContext(ctx, q,
		m.ID,
		string(m.Role),
		m.IsDefault,
		m.Active,
		m.DeletedAt,
		m.JoinedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}
	return expectOneRow(res)
}
