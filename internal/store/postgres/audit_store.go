package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"workspace-identity/internal/audit"
)

// AuditRepo persists audit events in the append-only audit_events table.
type AuditRepo struct {
	db *sql.DB
}

var _ audit.Repository = (*AuditRepo)(nil)

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Append(ctx context.Context, e audit.Event) error {
	const q = `
INSERT INTO audit_events (id, workspace_id, type, actor_user_id, target_user_id, message, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		nullUUID(e.WorkspaceID),
		string(e.Type),
		nullUUID(e.ActorUserID),
		nullUUID(e.TargetUserID),
		e.Message,
		nullString(e.Metadata),
		e.CreatedAt,
	)
	return mapPostgresError(err)
}

func (r *AuditRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]audit.Event, error) {
	const q = `
SELECT id, workspace_id, type, actor_user_id, target_user_id, message, metadata, created_at
FROM audit_events
WHERE workspace_id = $1
ORDER BY created_at DESC
LIMIT NULLIF($2, 0)
`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.QueryContext(ctx, q, workspaceID, limit)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var (
			e                 audit.Event
			ws, actor, target uuid.NullUUID
			metadata          sql.NullString
			eventType         string
		)
		if err := rows.Scan(&e.ID, &ws, &eventType, &actor, &target, &e.Message, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.WorkspaceID = ws.UUID
		e.Type = audit.EventType(eventType)
		e.ActorUserID = actor.UUID
		e.TargetUserID = target.UUID
		e.Metadata = metadata.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
