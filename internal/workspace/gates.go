package workspace

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
	"workspace-identity/internal/rbac"
	"workspace-identity/internal/store"
)

// activeWorkspace loads a workspace that has not been soft-deleted.
func activeWorkspace(ctx context.Context, repo store.Repository, workspaceID uuid.UUID) (models.Workspace, error) {
	ws, err := repo.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Workspace{}, ErrWorkspaceNotFound
	}
	if err != nil {
		return models.Workspace{}, err
	}
	if !ws.IsActive() {
		return models.Workspace{}, ErrWorkspaceNotFound
	}
	return ws, nil
}

// gate resolves the workspace and the requester's active membership and checks
// the membership's role against min.
func gate(ctx context.Context, repo store.Repository, workspaceID, requesterID uuid.UUID, min models.Role) (models.Workspace, models.WorkspaceMember, error) {
	ws, err := activeWorkspace(ctx, repo, workspaceID)
	if err != nil {
		return models.Workspace{}, models.WorkspaceMember{}, err
	}

	m, err := repo.GetMembership(ctx, workspaceID, requesterID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Workspace{}, models.WorkspaceMember{}, ErrNotAMember
	}
	if err != nil {
		return models.Workspace{}, models.WorkspaceMember{}, err
	}
	if !m.IsActive() {
		return models.Workspace{}, models.WorkspaceMember{}, ErrNotAMember
	}
	if !rbac.Check(m.Role, min) {
		return models.Workspace{}, models.WorkspaceMember{}, ErrNotAuthorized
	}
	return ws, m, nil
}

func requireMember(ctx context.Context, repo store.Repository, workspaceID, requesterID uuid.UUID) (models.Workspace, models.WorkspaceMember, error) {
	return gate(ctx, repo, workspaceID, requesterID, rbac.GateMember)
}

func requireOwnerOrAdmin(ctx context.Context, repo store.Repository, workspaceID, requesterID uuid.UUID) (models.Workspace, models.WorkspaceMember, error) {
	return gate(ctx, repo, workspaceID, requesterID, rbac.GateOwnerOrAdmin)
}

func requireOwner(ctx context.Context, repo store.Repository, workspaceID, requesterID uuid.UUID) (models.Workspace, models.WorkspaceMember, error) {
	return gate(ctx, repo, workspaceID, requesterID, rbac.GateOwner)
}
