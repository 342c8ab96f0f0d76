package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is a tenant boundary.
// Invariant: exactly one active OWNER member, whose UserID equals OwnerID.
type Workspace struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OwnerID      uuid.UUID `json:"owner_id" db:"owner_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	IsPublic     bool      `json:"is_public" db:"is_public"`
	NeedApproval bool      `json:"need_approval" db:"need_approval"`

	Lifecycle

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WorkspaceMember joins a user to a workspace with a role.
// Invariant: unique (WorkspaceID, UserID); at most one active default per user.
type WorkspaceMember struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Role        Role      `json:"role" db:"role"`
	IsDefault   bool      `json:"is_default" db:"is_default"`

	Lifecycle

	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WorkspaceJoinRequest is a pending-approval ticket.
// Invariant: at most one PENDING request per (WorkspaceID, UserID).
type WorkspaceJoinRequest struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id" db:"workspace_id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Status      JoinStatus `json:"status" db:"status"`
	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
