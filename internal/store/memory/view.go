package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
)

// view implements store.Repository over one state snapshot. Callers hold the lock.
// Writes enforce the same uniqueness rules as the Postgres schema.
type view struct {
	st *state
}

var _ store.Repository = (*view)(nil)

func (v *view) GetUser(_ context.Context, id uuid.UUID) (models.User, error) {
	u, ok := v.st.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (v *view) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range v.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (v *view) GetUserByProviderID(_ context.Context, providerID string) (models.User, error) {
	for _, u := range v.st.users {
		if u.ProviderID != nil && *u.ProviderID == providerID {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (v *view) userConflicts(u models.User) bool {
	for id, other := range v.st.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return true
		}
		if u.ProviderID != nil && other.ProviderID != nil && *u.ProviderID == *other.ProviderID {
			return true
		}
	}
	return false
}

func (v *view) CreateUser(_ context.Context, u models.User) error {
	if _, ok := v.st.users[u.ID]; ok || v.userConflicts(u) {
		return store.ErrConflict
	}
	v.st.users[u.ID] = u
	return nil
}

func (v *view) UpdateUser(_ context.Context, u models.User) error {
	if _, ok := v.st.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	if v.userConflicts(u) {
		return store.ErrConflict
	}
	v.st.users[u.ID] = u
	return nil
}

func (v *view) GetProfile(_ context.Context, userID, workspaceID uuid.UUID) (models.UserProfile, error) {
	p, ok := v.st.profiles[profileKey{userID, workspaceID}]
	if !ok {
		return models.UserProfile{}, store.ErrNotFound
	}
	return p, nil
}

func (v *view) ListProfilesByUser(_ context.Context, userID uuid.UUID) ([]models.UserProfile, error) {
	var out []models.UserProfile
	for k, p := range v.st.profiles {
		if k.userID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (v *view) ListProfilesByUsers(_ context.Context, workspaceID uuid.UUID, userIDs []uuid.UUID) ([]models.UserProfile, error) {
	out := make([]models.UserProfile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := v.st.profiles[profileKey{id, workspaceID}]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (v *view) CreateProfile(_ context.Context, p models.UserProfile) error {
	k := profileKey{p.UserID, p.WorkspaceID}
	if _, ok := v.st.profiles[k]; ok {
		return store.ErrConflict
	}
	v.st.profiles[k] = p
	return nil
}

func (v *view) UpdateProfile(_ context.Context, p models.UserProfile) error {
	k := profileKey{p.UserID, p.WorkspaceID}
	cur, ok := v.st.profiles[k]
	if !ok || cur.ID != p.ID {
		return store.ErrNotFound
	}
	v.st.profiles[k] = p
	return nil
}

func (v *view) DeleteProfile(_ context.Context, userID, workspaceID uuid.UUID) error {
	k := profileKey{userID, workspaceID}
	if _, ok := v.st.profiles[k]; !ok {
		return store.ErrNotFound
	}
	delete(v.st.profiles, k)
	return nil
}

func (v *view) GetWorkspace(_ context.Context, id uuid.UUID) (models.Workspace, error) {
	w, ok := v.st.workspaces[id]
	if !ok {
		return models.Workspace{}, store.ErrNotFound
	}
	return w, nil
}

func (v *view) ListWorkspacesByIDs(_ context.Context, ids []uuid.UUID) ([]models.Workspace, error) {
	out := make([]models.Workspace, 0, len(ids))
	for _, id := range ids {
		if w, ok := v.st.workspaces[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (v *view) CreateWorkspace(_ context.Context, w models.Workspace) error {
	if _, ok := v.st.workspaces[w.ID]; ok {
		return store.ErrConflict
	}
	v.st.workspaces[w.ID] = w
	return nil
}

func (v *view) UpdateWorkspace(_ context.Context, w models.Workspace) error {
	if _, ok := v.st.workspaces[w.ID]; !ok {
		return store.ErrNotFound
	}
	v.st.workspaces[w.ID] = w
	return nil
}

func (v *view) GetMember(_ context.Context, id uuid.UUID) (models.WorkspaceMember, error) {
	m, ok := v.st.members[id]
	if !ok {
		return models.WorkspaceMember{}, store.ErrNotFound
	}
	return m, nil
}

func (v *view) GetMembership(_ context.Context, workspaceID, userID uuid.UUID) (models.WorkspaceMember, error) {
	for _, m := range v.st.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return m, nil
		}
	}
	return models.WorkspaceMember{}, store.ErrNotFound
}

func sortMembers(ms []models.WorkspaceMember) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].JoinedAt.Equal(ms[j].JoinedAt) {
			return ms[i].ID.String() < ms[j].ID.String()
		}
		return ms[i].JoinedAt.Before(ms[j].JoinedAt)
	})
}

func (v *view) ListMembersByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	var out []models.WorkspaceMember
	for _, m := range v.st.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	sortMembers(out)
	return out, nil
}

func (v *view) ListActiveMembershipsByUser(_ context.Context, userID uuid.UUID) ([]models.WorkspaceMember, error) {
	var out []models.WorkspaceMember
	for _, m := range v.st.members {
		if m.UserID == userID && m.IsActive() {
			out = append(out, m)
		}
	}
	sortMembers(out)
	return out, nil
}

func (v *view) GetDefaultMembership(_ context.Context, userID uuid.UUID) (models.WorkspaceMember, error) {
	for _, m := range v.st.members {
		if m.UserID == userID && m.IsDefault && m.IsActive() {
			return m, nil
		}
	}
	return models.WorkspaceMember{}, store.ErrNotFound
}

func (v *view) ClearDefault(_ context.Context, userID uuid.UUID) error {
	for id, m := range v.st.members {
		if m.UserID == userID && m.IsDefault {
			m.IsDefault = false
			v.st.members[id] = m
		}
	}
	return nil
}

// memberConflicts mirrors the unique and partial unique indexes on workspace_members.
func (v *view) memberConflicts(m models.WorkspaceMember) bool {
	for id, other := range v.st.members {
		if id == m.ID {
			continue
		}
		if other.WorkspaceID == m.WorkspaceID && other.UserID == m.UserID {
			return true
		}
		if !m.IsActive() || !other.IsActive() {
			continue
		}
		if m.IsDefault && other.IsDefault && other.UserID == m.UserID {
			return true
		}
		if m.Role == models.RoleOwner && other.Role == models.RoleOwner && other.WorkspaceID == m.WorkspaceID {
			return true
		}
	}
	return false
}

func (v *view) CreateMember(_ context.Context, m models.WorkspaceMember) error {
	if _, ok := v.st.members[m.ID]; ok || v.memberConflicts(m) {
		return store.ErrConflict
	}
	v.st.members[m.ID] = m
	return nil
}

func (v *view) UpdateMember(_ context.Context, m models.WorkspaceMember) error {
	if _, ok := v.st.members[m.ID]; !ok {
		return store.ErrNotFound
	}
	if v.memberConflicts(m) {
		return store.ErrConflict
	}
	v.st.members[m.ID] = m
	return nil
}

func (v *view) GetJoinRequest(_ context.Context, id uuid.UUID) (models.WorkspaceJoinRequest, error) {
	r, ok := v.st.requests[id]
	if !ok {
		return models.WorkspaceJoinRequest{}, store.ErrNotFound
	}
	return r, nil
}

func (v *view) GetPendingJoinRequest(_ context.Context, workspaceID, userID uuid.UUID) (models.WorkspaceJoinRequest, error) {
	for _, r := range v.st.requests {
		if r.WorkspaceID == workspaceID && r.UserID == userID && r.Status == models.JoinStatusPending {
			return r, nil
		}
	}
	return models.WorkspaceJoinRequest{}, store.ErrNotFound
}

func (v *view) ListJoinRequests(_ context.Context, workspaceID uuid.UUID, status models.JoinStatus) ([]models.WorkspaceJoinRequest, error) {
	var out []models.WorkspaceJoinRequest
	for _, r := range v.st.requests {
		if r.WorkspaceID != workspaceID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (v *view) pendingConflicts(r models.WorkspaceJoinRequest) bool {
	if r.Status != models.JoinStatusPending {
		return false
	}
	for id, other := range v.st.requests {
		if id != r.ID && other.Status == models.JoinStatusPending &&
			other.WorkspaceID == r.WorkspaceID && other.UserID == r.UserID {
			return true
		}
	}
	return false
}

func (v *view) CreateJoinRequest(_ context.Context, r models.WorkspaceJoinRequest) error {
	if _, ok := v.st.requests[r.ID]; ok || v.pendingConflicts(r) {
		return store.ErrConflict
	}
	v.st.requests[r.ID] = r
	return nil
}

func (v *view) UpdateJoinRequest(_ context.Context, r models.WorkspaceJoinRequest) error {
	if _, ok := v.st.requests[r.ID]; !ok {
		return store.ErrNotFound
	}
	if v.pendingConflicts(r) {
		return store.ErrConflict
	}
	v.st.requests[r.ID] = r
	return nil
}
