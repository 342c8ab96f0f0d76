package models

import (
	"time"

	"github.com/google/uuid"
)

// GlobalWorkspaceID keys the profile a user gets at sign-up, before joining any workspace.
var GlobalWorkspaceID = uuid.Nil

const ProviderGoogle = "google"

// User is the identity anchor. Email and ProviderID are unique.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Provider   string    `json:"provider" db:"provider"`
	ProviderID *string   `json:"provider_id,omitempty" db:"provider_id"`

	Lifecycle

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile is the display identity of a user inside one workspace.
// At most one profile exists per (UserID, WorkspaceID).
type UserProfile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id" db:"workspace_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Nickname    string    `json:"nickname" db:"nickname"`
	Email       *string   `json:"email,omitempty" db:"email"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"avatar_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProviderProfile is what an OAuth2 provider tells us about the signed-in user.
type ProviderProfile struct {
	Email       string `json:"email"`
	Subject     string `json:"provider_subject_id"`
	DisplayName string `json:"display_name"`
}
