package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"workspace-identity/internal/audit"
	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
	"workspace-identity/pkg/logger"
)

// GetWorkspaceMembers lists active and removed members to any active member.
func (e *Engine) GetWorkspaceMembers(ctx context.Context, workspaceID, requesterID uuid.UUID) ([]Member, error) {
	if _, _, err := requireMember(ctx, e.store, workspaceID, requesterID); err != nil {
		return nil, err
	}

	rows, err := e.store.ListMembersByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UserID)
	}
	who, err := identities(ctx, e.store, workspaceID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Member, 0, len(rows))
	for _, m := range rows {
		out = append(out, toMember(m, who[m.UserID]))
	}
	return out, nil
}

// memberInWorkspace loads an active membership row and checks it belongs to workspaceID.
func memberInWorkspace(ctx context.Context, repo store.Repository, workspaceID, memberID uuid.UUID) (models.WorkspaceMember, error) {
	m, err := repo.GetMember(ctx, memberID)
	if errors.Is(err, store.ErrNotFound) {
		return models.WorkspaceMember{}, ErrMemberNotFound
	}
	if err != nil {
		return models.WorkspaceMember{}, err
	}
	if m.WorkspaceID != workspaceID {
		return models.WorkspaceMember{}, ErrMemberNotInWorkspace
	}
	if !m.IsActive() {
		return models.WorkspaceMember{}, ErrMemberNotFound
	}
	return m, nil
}

// UpdateMemberRole changes a member's role. OWNER only.
// The owner's own row cannot be changed directly. Promoting someone to OWNER
// transfers ownership: the previous owner becomes ADMIN in the same unit of work.
func (e *Engine) UpdateMemberRole(ctx context.Context, workspaceID, memberID uuid.UUID, role models.Role, requesterID uuid.UUID) (models.WorkspaceMember, error) {
	if !role.Valid() {
		return models.WorkspaceMember{}, ErrInvalidRole
	}

	var (
		out      models.WorkspaceMember
		previous models.Role
	)
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		ws, owner, err := requireOwner(ctx, repo, workspaceID, requesterID)
		if err != nil {
			return err
		}
		target, err := memberInWorkspace(ctx, repo, workspaceID, memberID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleOwner {
			return ErrOwnerRoleChange
		}
		previous = target.Role
		out = target
		if target.Role == role {
			return nil
		}

		now := e.now()
		if role == models.RoleOwner {
			// Demote first: the store allows one active OWNER per workspace.
			owner.Role = models.RoleAdmin
			owner.UpdatedAt = now
			if err := repo.UpdateMember(ctx, owner); err != nil {
				return err
			}
			ws.OwnerID = target.UserID
			ws.UpdatedAt = now
			if err := repo.UpdateWorkspace(ctx, ws); err != nil {
				return err
			}
		}

		target.Role = role
		target.UpdatedAt = now
		if err := repo.UpdateMember(ctx, target); err != nil {
			return err
		}
		out = target
		return nil
	})
	if err != nil {
		return models.WorkspaceMember{}, conflictErr(err)
	}
	if previous == role {
		return out, nil
	}

	ev := audit.Event{
		WorkspaceID:  workspaceID,
		Type:         audit.EventMemberRoleChanged,
		ActorUserID:  requesterID,
		TargetUserID: out.UserID,
		Message:      fmt.Sprintf("role %s -> %s", previous, role),
	}
	if role == models.RoleOwner {
		ev.Type = audit.EventOwnershipTransferred
		logger.From(ctx).Info("ownership transferred",
			"workspace_id", workspaceID.String(),
			"from_user_id", requesterID.String(),
			"to_user_id", out.UserID.String(),
		)
	}
	e.audit.Record(ctx, ev)
	return out, nil
}

// RemoveMember soft-deactivates a membership. OWNER or ADMIN only; the owner
// cannot be removed and nobody removes themselves.
func (e *Engine) RemoveMember(ctx context.Context, workspaceID, memberID, requesterID uuid.UUID) error {
	var removed models.WorkspaceMember
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		if _, _, err := requireOwnerOrAdmin(ctx, repo, workspaceID, requesterID); err != nil {
			return err
		}
		target, err := memberInWorkspace(ctx, repo, workspaceID, memberID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleOwner {
			return ErrCannotRemoveOwner
		}
		if target.UserID == requesterID {
			return ErrSelfRemoval
		}

		now := e.now()
		target.SoftDelete(now)
		target.IsDefault = false
		target.UpdatedAt = now
		if err := repo.UpdateMember(ctx, target); err != nil {
			return err
		}
		if err := repo.DeleteProfile(ctx, target.UserID, workspaceID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		removed = target
		return nil
	})
	if err != nil {
		return conflictErr(err)
	}

	logger.From(ctx).Info("member removed",
		"workspace_id", workspaceID.String(),
		"member_id", memberID.String(),
		"user_id", requesterID.String(),
	)
	e.audit.Record(ctx, audit.Event{
		WorkspaceID:  workspaceID,
		Type:         audit.EventMemberRemoved,
		ActorUserID:  requesterID,
		TargetUserID: removed.UserID,
	})
	return nil
}
