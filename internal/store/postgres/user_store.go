package postgres

import (
	"context"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
)

const userColumns = `id, email, provider, provider_id, is_active, deleted_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Provider,
		&u.ProviderID,
		&u.Active,
		&u.DeletedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *repo) getUserWhere(ctx context.Context, where string, arg any) (models.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		return models.User{}, mapPostgresError(err)
	}
	return u, nil
}

func (r *repo) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.getUserWhere(ctx, `id = $1`, id)
}

func (r *repo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getUserWhere(ctx, `email = $1`, email)
}

func (r *repo) GetUserByProviderID(ctx context.Context, providerID string) (models.User, error) {
	return r.getUserWhere(ctx, `provider_id = $1`, providerID)
}

func (r *repo) CreateUser(ctx context.Context, u models.User) error {
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.q.ExecContext(ctx, q,
		u.ID,
		u.Email,
		u.Provider,
		u.ProviderID,
		u.Active,
		u.DeletedAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return mapPostgresError(err)
}

func (r *repo) UpdateUser(ctx context.Context, u models.User) error {
	const q = `
UPDATE users
SET email = $2, provider = $3, provider_id = $4, is_active = $5, deleted_at = $6, updated_at = $7
WHERE id = $1
`
	res, err := r.q.ExecContext(ctx, q,
		u.ID,
		u.Email,
		u.Provider,
		u.ProviderID,
		u.Active,
		u.DeletedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}
	return expectOneRow(res)
}
