// Package postgres implements store.Store on database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"

	"workspace-identity/internal/store"
	"workspace-identity/pkg/utils"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs reads directly on the pool and units of work in SERIALIZABLE
// transactions retried on conflict.
type Store struct {
	*repo
	db    *sql.DB
	retry utils.RetryPolicy
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB, retry utils.RetryPolicy) *Store {
	return &Store{repo: &repo{q: db}, db: db, retry: retry}
}

func (s *Store) InTx(ctx context.Context, fn store.TxFunc) error {
	return utils.WithSerializableTx(ctx, s.db, s.retry, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &repo{q: tx})
	})
}

// repo implements store.Repository over a querier.
type repo struct {
	q querier
}

var _ store.Repository = (*repo)(nil)
