package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - WorkspaceID is uuid.Nil only for session events that are not tied to a workspace.
// - Recording is best-effort; critical flows never fail on audit errors.
type Event struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`

	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event.
	ActorUserID uuid.UUID `json:"actor_user_id" db:"actor_user_id"`
	// TargetUserID is the user the event is about, when different from the actor.
	TargetUserID uuid.UUID `json:"target_user_id" db:"target_user_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventWorkspaceCreated     EventType = "workspace_created"
	EventWorkspaceUpdated     EventType = "workspace_updated"
	EventWorkspaceDeleted     EventType = "workspace_deleted"
	EventMemberRoleChanged    EventType = "member_role_changed"
	EventOwnershipTransferred EventType = "ownership_transferred"
	EventMemberRemoved        EventType = "member_removed"
	EventJoinRequested        EventType = "join_requested"
	EventJoinApproved         EventType = "join_approved"
	EventJoinRejected         EventType = "join_rejected"
	EventDefaultWorkspaceSet  EventType = "default_workspace_set"
	EventSessionLogout        EventType = "session_logout"
)

func (t EventType) Valid() bool {
	switch t {
	case EventWorkspaceCreated, EventWorkspaceUpdated, EventWorkspaceDeleted,
		EventMemberRoleChanged, EventOwnershipTransferred, EventMemberRemoved,
		EventJoinRequested, EventJoinApproved, EventJoinRejected,
		EventDefaultWorkspaceSet, EventSessionLogout:
		return true
	default:
		return false
	}
}

// workspaceScoped reports whether events of this type must name a workspace.
func (t EventType) workspaceScoped() bool {
	return t != EventSessionLogout
}
