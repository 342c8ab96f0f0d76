package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
)

const profileColumns = `id, workspace_id, user_id, nickname, email, avatar_url, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(
		&p.ID,
		&p.WorkspaceID,
		&p.UserID,
		&p.Nickname,
		&p.Email,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectProfiles(rows *sql.Rows, err error) ([]models.UserProfile, error) {
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) GetProfile(ctx context.Context, userID, workspaceID uuid.UUID) (models.UserProfile, error) {
	const q = `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1 AND workspace_id = $2`
	p, err := scanProfile(r.q.QueryRowContext(ctx, q, userID, workspaceID))
	if err != nil {
		return models.UserProfile{}, mapPostgresError(err)
	}
	return p, nil
}

func (r *repo) ListProfilesByUser(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error) {
	const q = `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1 ORDER BY created_at`
	return collectProfiles(r.q.QueryContext(ctx, q, userID))
}

func (r *repo) ListProfilesByUsers(ctx context.Context, workspaceID uuid.UUID, userIDs []uuid.UUID) ([]models.UserProfile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	const q = `SELECT ` + profileColumns + ` FROM user_profiles WHERE workspace_id = $1 AND user_id = ANY($2::uuid[])`
	return collectProfiles(r.q.QueryContext(ctx, q, workspaceID, uuidStrings(userIDs)))
}

func (r *repo) CreateProfile(ctx context.Context, p models.UserProfile) error {
	const q = `
INSERT INTO user_profiles (` + profileColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.q.ExecContext(ctx, q,
		p.ID,
		p.WorkspaceID,
		p.UserID,
		p.Nickname,
		p.Email,
		p.AvatarURL,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapPostgresError(err)
}

func (r *repo) UpdateProfile(ctx context.Context, p models.UserProfile) error {
	const q = `
UPDATE user_profiles
SET nickname = $2, email = $3, avatar_url = $4, updated_at = $5
WHERE id = $1
`
	res, err := r.q.ExecContext(ctx, q, p.ID, p.Nickname, p.Email, p.AvatarURL, p.UpdatedAt)
	if err != nil {
		return mapPostgresError(err)
	}
	return expectOneRow(res)
}

func (r *repo) DeleteProfile(ctx context.Context, userID, workspaceID uuid.UUID) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM user_profiles WHERE user_id = $1 AND workspace_id = $2`, userID, workspaceID)
	if err != nil {
		return mapPostgresError(err)
	}
	return expectOneRow(res)
}

// uuidStrings renders ids for a text-encoded uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
