// Package store defines the persistence contract for users, profiles,
// workspaces, memberships and join requests. Implementations hold no domain
// logic; rule checks live in the services that call them.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("store: conflict")
)

type UserRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByProviderID(ctx context.Context, providerID string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, u models.User) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID, workspaceID uuid.UUID) (models.UserProfile, error)
	ListProfilesByUser(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error)
	// ListProfilesByUsers returns every profile of the given users in one workspace.
	ListProfilesByUsers(ctx context.Context, workspaceID uuid.UUID, userIDs []uuid.UUID) ([]models.UserProfile, error)
	CreateProfile(ctx context.Context, p models.UserProfile) error
	UpdateProfile(ctx context.Context, p models.UserProfile) error
	DeleteProfile(ctx context.Context, userID, workspaceID uuid.UUID) error
}

type WorkspaceRepository interface {
	GetWorkspace(ctx context.Context, id uuid.UUID) (models.Workspace, error)
	ListWorkspacesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Workspace, error)
	CreateWorkspace(ctx context.Context, w models.Workspace) error
	UpdateWorkspace(ctx context.Context, w models.Workspace) error
}

type MemberRepository interface {
	GetMember(ctx context.Context, id uuid.UUID) (models.WorkspaceMember, error)
	// GetMembership returns the membership row for (workspace, user) regardless of its lifecycle.
	GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (models.WorkspaceMember, error)
	ListMembersByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error)
	ListActiveMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.WorkspaceMember, error)
	GetDefaultMembership(ctx context.Context, userID uuid.UUID) (models.WorkspaceMember, error)
	// ClearDefault unsets the default flag on every membership of the user.
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	CreateMember(ctx context.Context, m models.WorkspaceMember) error
	UpdateMember(ctx context.Context, m models.WorkspaceMember) error
}

type JoinRequestRepository interface {
	GetJoinRequest(ctx context.Context, id uuid.UUID) (models.WorkspaceJoinRequest, error)
	GetPendingJoinRequest(ctx context.Context, workspaceID, userID uuid.UUID) (models.WorkspaceJoinRequest, error)
	// ListJoinRequests filters by status when status is non-empty. Newest first.
	ListJoinRequests(ctx context.Context, workspaceID uuid.UUID, status models.JoinStatus) ([]models.WorkspaceJoinRequest, error)
	CreateJoinRequest(ctx context.Context, r models.WorkspaceJoinRequest) error
	UpdateJoinRequest(ctx context.Context, r models.WorkspaceJoinRequest) error
}

// Repository is the full credential store.
type Repository interface {
	UserRepository
	ProfileRepository
	WorkspaceRepository
	MemberRepository
	JoinRequestRepository
}

// TxFunc is the unit of work executed by InTx.
type TxFunc func(ctx context.Context, repo Repository) error

// Store is a Repository that can run a unit of work atomically.
// If fn returns an error nothing it wrote is visible afterwards.
type Store interface {
	Repository
	InTx(ctx context.Context, fn TxFunc) error
}
