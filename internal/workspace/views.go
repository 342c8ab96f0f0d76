package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
)

// DeletedUserName stands in for a member whose user or profile is gone.
const DeletedUserName = "Deleted User"

// Summary is a workspace as seen by one of its members.
type Summary struct {
	models.Workspace
	OwnerNickname string      `json:"owner_nickname"`
	OwnerEmail    string      `json:"owner_email"`
	Role          models.Role `json:"role"`
	IsDefault     bool        `json:"is_default"`
}

// Member is a membership row enriched for display.
type Member struct {
	MemberID  uuid.UUID   `json:"member_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      models.Role `json:"role"`
	IsDefault bool        `json:"is_default"`
	Active    bool        `json:"is_active"`
	Nickname  string      `json:"nickname"`
	Email     string      `json:"email,omitempty"`
	AvatarURL *string     `json:"avatar_url,omitempty"`
	JoinedAt  time.Time   `json:"joined_at"`
}

// JoinRequest is a join request enriched with the requester's display info.
type JoinRequest struct {
	models.WorkspaceJoinRequest
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
}

type identity struct {
	nickname  string
	email     string
	avatarURL *string
}

// identities resolves display info for userIDs: the workspace profile first,
// then the global profile, then a placeholder. A lookup miss never fails the batch.
func identities(ctx context.Context, repo store.Repository, workspaceID uuid.UUID, userIDs []uuid.UUID) (map[uuid.UUID]identity, error) {
	out := make(map[uuid.UUID]identity, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	scoped, err := repo.ListProfilesByUsers(ctx, workspaceID, userIDs)
	if err != nil {
		return nil, err
	}
	global, err := repo.ListProfilesByUsers(ctx, models.GlobalWorkspaceID, userIDs)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uuid.UUID]models.UserProfile, len(userIDs))
	for _, p := range global {
		profiles[p.UserID] = p
	}
	for _, p := range scoped {
		profiles[p.UserID] = p
	}

	for _, id := range userIDs {
		if _, seen := out[id]; seen {
			continue
		}
		u, err := repo.GetUser(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			out[id] = identity{nickname: DeletedUserName}
			continue
		}
		if err != nil {
			return nil, err
		}
		p, ok := profiles[id]
		if !ok {
			out[id] = identity{nickname: DeletedUserName, email: u.Email}
			continue
		}
		email := u.Email
		if p.Email != nil && *p.Email != "" {
			email = *p.Email
		}
		out[id] = identity{nickname: p.Nickname, email: email, avatarURL: p.AvatarURL}
	}
	return out, nil
}

func toMember(m models.WorkspaceMember, who identity) Member {
	return Member{
		MemberID:  m.ID,
		UserID:    m.UserID,
		Role:      m.Role,
		IsDefault: m.IsDefault,
		Active:    m.IsActive(),
		Nickname:  who.nickname,
		Email:     who.email,
		AvatarURL: who.avatarURL,
		JoinedAt:  m.JoinedAt,
	}
}
