package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"workspace-identity/internal/audit"
	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
	"workspace-identity/internal/users"
)

// CreateJoinRequest files a PENDING request for userID to join workspaceID.
func (e *Engine) CreateJoinRequest(ctx context.Context, workspaceID, userID uuid.UUID) (models.WorkspaceJoinRequest, error) {
	var out models.WorkspaceJoinRequest
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		if _, err := activeWorkspace(ctx, repo, workspaceID); err != nil {
			return err
		}
		if _, err := activeUser(ctx, repo, userID); err != nil {
			return err
		}

		m, err := repo.GetMembership(ctx, workspaceID, userID)
		switch {
		case err == nil && m.IsActive():
			return ErrAlreadyMember
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err
		}

		if _, err := repo.GetPendingJoinRequest(ctx, workspaceID, userID); err == nil {
			return ErrJoinRequestPending
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		now := e.now()
		req := models.WorkspaceJoinRequest{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			UserID:      userID,
			Status:      models.JoinStatusPending,
			RequestedAt: now,
			UpdatedAt:   now,
		}
		if err := repo.CreateJoinRequest(ctx, req); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrJoinRequestPending
			}
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return models.WorkspaceJoinRequest{}, conflictErr(err)
	}

	e.audit.Record(ctx, audit.Event{
		WorkspaceID: workspaceID,
		Type:        audit.EventJoinRequested,
		ActorUserID: userID,
	})
	return out, nil
}

// UpdateJoinRequest approves or rejects a PENDING request. OWNER or ADMIN only.
// Both outcomes are terminal; answering a request twice fails with ErrRequestNotPending.
// Approval creates a MEMBER membership, or reactivates the row of a previously
// removed member.
func (e *Engine) UpdateJoinRequest(ctx context.Context, workspaceID, requestID uuid.UUID, status models.JoinStatus, responderID uuid.UUID) (models.WorkspaceJoinRequest, error) {
	if !status.Terminal() {
		return models.WorkspaceJoinRequest{}, ErrInvalidStatus
	}

	var out models.WorkspaceJoinRequest
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		if _, _, err := requireOwnerOrAdmin(ctx, repo, workspaceID, responderID); err != nil {
			return err
		}

		req, err := repo.GetJoinRequest(ctx, requestID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return err
		}
		if req.WorkspaceID != workspaceID {
			return ErrRequestNotInWorkspace
		}
		if req.Status != models.JoinStatusPending {
			return ErrRequestNotPending
		}

		now := e.now()
		if status == models.JoinStatusApproved {
			if err := e.admit(ctx, repo, req, now); err != nil {
				return err
			}
		}

		req.Status = status
		req.UpdatedAt = now
		if err := repo.UpdateJoinRequest(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return models.WorkspaceJoinRequest{}, conflictErr(err)
	}

	ev := audit.Event{
		WorkspaceID:  workspaceID,
		Type:         audit.EventJoinRejected,
		ActorUserID:  responderID,
		TargetUserID: out.UserID,
	}
	if status == models.JoinStatusApproved {
		ev.Type = audit.EventJoinApproved
	}
	e.audit.Record(ctx, ev)
	return out, nil
}

func (e *Engine) admit(ctx context.Context, repo store.Repository, req models.WorkspaceJoinRequest, now time.Time) error {
	u, err := repo.GetUser(ctx, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return users.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	m, err := repo.GetMembership(ctx, req.WorkspaceID, req.UserID)
	switch {
	case err == nil && m.IsActive():
		return ErrAlreadyMember
	case err == nil:
		m.Restore()
		m.Role = models.RoleMember
		m.IsDefault = false
		m.JoinedAt = now
		m.UpdatedAt = now
		if err := repo.UpdateMember(ctx, m); err != nil {
			return err
		}
	case errors.Is(err, store.ErrNotFound):
		if err := repo.CreateMember(ctx, models.WorkspaceMember{
			ID:          uuid.New(),
			WorkspaceID: req.WorkspaceID,
			UserID:      req.UserID,
			Role:        models.RoleMember,
			IsDefault:   false,
			Lifecycle:   models.Alive(),
			JoinedAt:    now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}
	default:
		return err
	}

	return users.SeedWorkspaceProfile(ctx, repo, u, req.WorkspaceID, now)
}

// GetJoinRequests lists a workspace's join requests, newest first. OWNER or ADMIN only.
// An empty status lists every request.
func (e *Engine) GetJoinRequests(ctx context.Context, workspaceID, requesterID uuid.UUID, status models.JoinStatus) ([]JoinRequest, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if _, _, err := requireOwnerOrAdmin(ctx, e.store, workspaceID, requesterID); err != nil {
		return nil, err
	}

	rows, err := e.store.ListJoinRequests(ctx, workspaceID, status)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	who, err := identities(ctx, e.store, models.GlobalWorkspaceID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]JoinRequest, 0, len(rows))
	for _, r := range rows {
		w := who[r.UserID]
		out = append(out, JoinRequest{WorkspaceJoinRequest: r, Nickname: w.nickname, Email: w.email})
	}
	return out, nil
}
