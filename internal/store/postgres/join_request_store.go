package postgres

import (
	"context"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
)

const joinRequestColumns = `id, workspace_id, user_id, status, requested_at, updated_at`

func scanJoinRequest(row interface{ Scan(...any) error }) (models.WorkspaceJoinRequest, error) {
	var jr models.WorkspaceJoinRequest
	err := row.Scan(
		&jr.ID,
		&jr.WorkspaceID,
		&jr.UserID,
		&jr.Status,
		&jr.RequestedAt,
		&jr.UpdatedAt,
	)
	return jr, err
}

func (r *repo) GetJoinRequest(ctx context.Context, id uuid.UUID) (models.WorkspaceJoinRequest, error) {
	jr, err := scanJoinRequest(r.q.QueryRowContext(ctx,
		`SELECT `+joinRequestColumns+` FROM workspace_join_requests WHERE id = $1`, id))
	if err != nil {
		return models.WorkspaceJoinRequest{}, mapPostgresError(err)
	}
	return jr, nil
}

func (r *repo) GetPendingJoinRequest(ctx context.Context, workspaceID, userID uuid.UUID) (models.WorkspaceJoinRequest, error) {
	const q = `
SELECT ` + joinRequestColumns + `
FROM workspace_join_requests
WHERE workspace_id = $1 AND user_id = $2 AND status = 'PENDING'
`
	jr, err := scanJoinRequest(r.q.QueryRowContext(ctx, q, workspaceID, userID))
	if err != nil {
		return models.WorkspaceJoinRequest{}, mapPostgresError(err)
	}
	return jr, nil
}

func (r *repo) ListJoinRequests(ctx context.Context, workspaceID uuid.UUID, status models.JoinStatus) ([]models.WorkspaceJoinRequest, error) {
	const q = `
SELECT ` + joinRequestColumns + `
FROM workspace_join_requests
WHERE workspace_id = $1 AND ($2 = '' OR status = $2)
ORDER BY requested_at DESC
`
	rows, err := r.q.QueryContext(ctx, q, workspaceID, string(status))
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []models.WorkspaceJoinRequest
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, jr)
	}
	return out, rows.Err()
}

func (r *repo) CreateJoinRequest(ctx context.Context, jr models.WorkspaceJoinRequest) error {
	const q = `
INSERT INTO workspace_join_requests (` + joinRequestColumns + `)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.q.ExecContext(ctx, q,
		jr.ID,
		jr.WorkspaceID,
		jr.UserID,
		string(jr.Status),
		jr.RequestedAt,
		jr.UpdatedAt,
	)
	return mapPostgresError(err)
}

func (r *repo) UpdateJoinRequest(ctx context.Context, jr models.WorkspaceJoinRequest) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE workspace_join_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		jr.ID, string(jr.Status), jr.UpdatedAt)
	if err != nil {
		return mapPostgresError(err)
	}
	return expectOneRow(res)
}
