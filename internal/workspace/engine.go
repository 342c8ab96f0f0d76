// Package workspace is the membership engine: workspaces, their members and
// join requests.
//
// Invariants:
// - every active workspace has exactly one active OWNER member, the workspace's OwnerID
// - a user has at most one active default membership
// - at most one PENDING join request per (workspace, user)
// - every mutation runs as one store unit of work; rule violations are detected
//   before anything is written
package workspace

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-identity/internal/audit"
	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
	"workspace-identity/internal/users"
	"workspace-identity/pkg/logger"
)

type Engine struct {
	store store.Store
	audit *audit.Service
	clock func() time.Time
}

func NewEngine(st store.Store, au *audit.Service) *Engine {
	return &Engine{store: st, audit: au, clock: time.Now}
}

type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Update changes workspace settings. Nil fields and blank strings are left alone.
type Update struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	IsPublic     *bool   `json:"is_public,omitempty"`
	NeedApproval *bool   `json:"need_approval,omitempty"`
}

func (e *Engine) now() time.Time { return e.clock().UTC() }

// CreateWorkspace creates a private, approval-gated workspace owned by ownerID.
// The owner's membership becomes their default.
func (e *Engine) CreateWorkspace(ctx context.Context, in CreateInput, ownerID uuid.UUID) (models.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Workspace{}, ErrNameRequired
	}

	var out models.Workspace
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		owner, err := activeUser(ctx, repo, ownerID)
		if err != nil {
			return err
		}

		now := e.now()
		ws := models.Workspace{
			ID:           uuid.New(),
			OwnerID:      owner.ID,
			Name:         name,
			Description:  strings.TrimSpace(in.Description),
			IsPublic:     false,
			NeedApproval: true,
			Lifecycle:    models.Alive(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		if err := repo.ClearDefault(ctx, owner.ID); err != nil {
			return err
		}
		if err := repo.CreateMember(ctx, models.WorkspaceMember{
			ID:          uuid.New(),
			WorkspaceID: ws.ID,
			UserID:      owner.ID,
			Role:        models.RoleOwner,
			IsDefault:   true,
			Lifecycle:   models.Alive(),
			JoinedAt:    now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}
		if err := users.SeedWorkspaceProfile(ctx, repo, owner, ws.ID, now); err != nil {
			return err
		}
		out = ws
		return nil
	})
	if err != nil {
		return models.Workspace{}, conflictErr(err)
	}

	logger.From(ctx).Info("workspace created", "workspace_id", out.ID.String(), "user_id", ownerID.String())
	e.audit.Record(ctx, audit.Event{
		WorkspaceID: out.ID,
		Type:        audit.EventWorkspaceCreated,
		ActorUserID: ownerID,
		Message:     "workspace created: " + out.Name,
	})
	return out, nil
}

// GetWorkspace returns a workspace to one of its active members.
func (e *Engine) GetWorkspace(ctx context.Context, workspaceID, requesterID uuid.UUID) (Summary, error) {
	ws, m, err := requireMember(ctx, e.store, workspaceID, requesterID)
	if err != nil {
		return Summary{}, err
	}
	return e.summarize(ctx, ws, m)
}

func (e *Engine) UpdateWorkspace(ctx context.Context, workspaceID uuid.UUID, upd Update, requesterID uuid.UUID) (models.Workspace, error) {
	var out models.Workspace
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		ws, _, err := requireOwner(ctx, repo, workspaceID, requesterID)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			if v := strings.TrimSpace(*upd.Name); v != "" {
				ws.Name = v
			}
		}
		if upd.Description != nil {
			if v := strings.TrimSpace(*upd.Description); v != "" {
				ws.Description = v
			}
		}
		if upd.IsPublic != nil {
			ws.IsPublic = *upd.IsPublic
		}
		if upd.NeedApproval != nil {
			ws.NeedApproval = *upd.NeedApproval
		}
		ws.UpdatedAt = e.now()
		if err := repo.UpdateWorkspace(ctx, ws); err != nil {
			return err
		}
		out = ws
		return nil
	})
	if err != nil {
		return models.Workspace{}, conflictErr(err)
	}

	e.audit.Record(ctx, audit.Event{
		WorkspaceID: workspaceID,
		Type:        audit.EventWorkspaceUpdated,
		ActorUserID: requesterID,
	})
	return out, nil
}

// DeleteWorkspace soft-deletes the workspace. Membership rows are kept as history;
// readers must check the workspace's own lifecycle.
func (e *Engine) DeleteWorkspace(ctx context.Context, workspaceID, requesterID uuid.UUID) error {
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		ws, _, err := requireOwner(ctx, repo, workspaceID, requesterID)
		if err != nil {
			return err
		}
		now := e.now()
		ws.SoftDelete(now)
		ws.UpdatedAt = now
		return repo.UpdateWorkspace(ctx, ws)
	})
	if err != nil {
		return conflictErr(err)
	}

	logger.From(ctx).Info("workspace deleted", "workspace_id", workspaceID.String(), "user_id", requesterID.String())
	e.audit.Record(ctx, audit.Event{
		WorkspaceID: workspaceID,
		Type:        audit.EventWorkspaceDeleted,
		ActorUserID: requesterID,
	})
	return nil
}

// GetUserWorkspaces lists the active workspaces where userID holds an active membership.
func (e *Engine) GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]Summary, error) {
	memberships, err := e.store.ListActiveMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []Summary{}, nil
	}

	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.WorkspaceID)
	}
	list, err := e.store.ListWorkspacesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Workspace, len(list))
	ownerIDs := make([]uuid.UUID, 0, len(list))
	for _, ws := range list {
		byID[ws.ID] = ws
		ownerIDs = append(ownerIDs, ws.OwnerID)
	}
	owners, err := identities(ctx, e.store, models.GlobalWorkspaceID, ownerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(memberships))
	for _, m := range memberships {
		ws, ok := byID[m.WorkspaceID]
		if !ok || !ws.IsActive() {
			continue
		}
		owner := owners[ws.OwnerID]
		out = append(out, Summary{
			Workspace:     ws,
			OwnerNickname: owner.nickname,
			OwnerEmail:    owner.email,
			Role:          m.Role,
			IsDefault:     m.IsDefault,
		})
	}
	return out, nil
}

// SetDefaultWorkspace flags the user's membership in workspaceID as default and
// clears the flag everywhere else. Calling it again is a no-op.
func (e *Engine) SetDefaultWorkspace(ctx context.Context, workspaceID, userID uuid.UUID) error {
	changed := false
	err := e.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		changed = false
		_, m, err := requireMember(ctx, repo, workspaceID, userID)
		if err != nil {
			return err
		}
		if m.IsDefault {
			return nil
		}
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		m.IsDefault = true
		m.UpdatedAt = e.now()
		if err := repo.UpdateMember(ctx, m); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return conflictErr(err)
	}

	if changed {
		e.audit.Record(ctx, audit.Event{
			WorkspaceID: workspaceID,
			Type:        audit.EventDefaultWorkspaceSet,
			ActorUserID: userID,
		})
	}
	return nil
}

// GetDefaultWorkspace returns the workspace of the user's default membership.
func (e *Engine) GetDefaultWorkspace(ctx context.Context, userID uuid.UUID) (Summary, error) {
	m, err := e.store.GetDefaultMembership(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Summary{}, ErrWorkspaceNotFound
	}
	if err != nil {
		return Summary{}, err
	}
	ws, err := activeWorkspace(ctx, e.store, m.WorkspaceID)
	if err != nil {
		return Summary{}, err
	}
	return e.summarize(ctx, ws, m)
}

func (e *Engine) summarize(ctx context.Context, ws models.Workspace, m models.WorkspaceMember) (Summary, error) {
	owners, err := identities(ctx, e.store, models.GlobalWorkspaceID, []uuid.UUID{ws.OwnerID})
	if err != nil {
		return Summary{}, err
	}
	owner := owners[ws.OwnerID]
	return Summary{
		Workspace:     ws,
		OwnerNickname: owner.nickname,
		OwnerEmail:    owner.email,
		Role:          m.Role,
		IsDefault:     m.IsDefault,
	}, nil
}

func activeUser(ctx context.Context, repo store.Repository, id uuid.UUID) (models.User, error) {
	u, err := repo.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, users.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if !u.IsActive() {
		return models.User{}, users.ErrUserNotActive
	}
	return u, nil
}
