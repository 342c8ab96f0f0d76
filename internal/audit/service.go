package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"workspace-identity/pkg/logger"
)

// Repository is the persistence contract for audit events.
// It is append-only: there is no Update or Delete.
type Repository interface {
	Append(ctx context.Context, e Event) error
	// ListByWorkspace returns the newest events first; limit <= 0 means no limit.
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]Event, error)
}

// Service records membership and session events.
// Audit is internal-only; these records are not exposed to workspace members.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if !e.Type.Valid() {
		return ErrInvalidEvent
	}
	if e.Type.workspaceScoped() && e.WorkspaceID == uuid.Nil {
		return ErrInvalidEvent
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Record appends e and logs instead of returning a failure.
// A nil Service records nothing.
func (s *Service) Record(ctx context.Context, e Event) {
	if s == nil {
		return
	}
	if err := s.Append(ctx, e); err != nil {
		logger.From(ctx).Warn("audit append failed",
			"type", string(e.Type),
			"workspace_id", e.WorkspaceID.String(),
			"err", err,
		)
	}
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID, limit int) ([]Event, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	return s.repo.ListByWorkspace(ctx, workspaceID, limit)
}
