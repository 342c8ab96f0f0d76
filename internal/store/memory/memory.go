// Package memory is an in-process store.Store used by tests and local runs.
// InTx serializes units of work under one mutex and applies them
// copy-on-write, so a failed unit of work leaves no trace.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
)

type profileKey struct {
	userID      uuid.UUID
	workspaceID uuid.UUID
}

type state struct {
	users      map[uuid.UUID]models.User
	profiles   map[profileKey]models.UserProfile
	workspaces map[uuid.UUID]models.Workspace
	members    map[uuid.UUID]models.WorkspaceMember
	requests   map[uuid.UUID]models.WorkspaceJoinRequest
}

func newState() *state {
	return &state{
		users:      map[uuid.UUID]models.User{},
		profiles:   map[profileKey]models.UserProfile{},
		workspaces: map[uuid.UUID]models.Workspace{},
		members:    map[uuid.UUID]models.WorkspaceMember{},
		requests:   map[uuid.UUID]models.WorkspaceJoinRequest{},
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.profiles {
		out.profiles[k] = v
	}
	for k, v := range s.workspaces {
		out.workspaces[k] = v
	}
	for k, v := range s.members {
		out.members[k] = v
	}
	for k, v := range s.requests {
		out.requests[k] = v
	}
	return out
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ store.Store = (*Store)(nil)

func New() *Store { return &Store{st: newState()} }

// InTx runs fn against a private copy of the state and publishes it only when fn succeeds.
// fn must not call back into s; use the repo it receives.
func (s *Store) InTx(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	if err := fn(ctx, &view{st: draft}); err != nil {
		return err
	}
	s.st = draft
	return nil
}

// locked runs fn against the live state.
func (s *Store) locked(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: s.st})
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (u models.User, err error) {
	err = s.locked(func(v *view) error { u, err = v.GetUser(ctx, id); return err })
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (u models.User, err error) {
	err = s.locked(func(v *view) error { u, err = v.GetUserByEmail(ctx, email); return err })
	return u, err
}

func (s *Store) GetUserByProviderID(ctx context.Context, providerID string) (u models.User, err error) {
	err = s.locked(func(v *view) error { u, err = v.GetUserByProviderID(ctx, providerID); return err })
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	return s.locked(func(v *view) error { return v.CreateUser(ctx, u) })
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	return s.locked(func(v *view) error { return v.UpdateUser(ctx, u) })
}

func (s *Store) GetProfile(ctx context.Context, userID, workspaceID uuid.UUID) (p models.UserProfile, err error) {
	err = s.locked(func(v *view) error { p, err = v.GetProfile(ctx, userID, workspaceID); return err })
	return p, err
}

func (s *Store) ListProfilesByUser(ctx context.Context, userID uuid.UUID) (out []models.UserProfile, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListProfilesByUser(ctx, userID); return err })
	return out, err
}

func (s *Store) ListProfilesByUsers(ctx context.Context, workspaceID uuid.UUID, userIDs []uuid.UUID) (out []models.UserProfile, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListProfilesByUsers(ctx, workspaceID, userIDs); return err })
	return out, err
}

func (s *Store) CreateProfile(ctx context.Context, p models.UserProfile) error {
	return s.locked(func(v *view) error { return v.CreateProfile(ctx, p) })
}

func (s *Store) UpdateProfile(ctx context.Context, p models.UserProfile) error {
	return s.locked(func(v *view) error { return v.UpdateProfile(ctx, p) })
}

func (s *Store) DeleteProfile(ctx context.Context, userID, workspaceID uuid.UUID) error {
	return s.locked(func(v *view) error { return v.DeleteProfile(ctx, userID, workspaceID) })
}

func (s *Store) GetWorkspace(ctx context.Context, id uuid.UUID) (w models.Workspace, err error) {
	err = s.locked(func(v *view) error { w, err = v.GetWorkspace(ctx, id); return err })
	return w, err
}

func (s *Store) ListWorkspacesByIDs(ctx context.Context, ids []uuid.UUID) (out []models.Workspace, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListWorkspacesByIDs(ctx, ids); return err })
	return out, err
}

func (s *Store) CreateWorkspace(ctx context.Context, w models.Workspace) error {
	return s.locked(func(v *view) error { return v.CreateWorkspace(ctx, w) })
}

func (s *Store) UpdateWorkspace(ctx context.Context, w models.Workspace) error {
	return s.locked(func(v *view) error { return v.UpdateWorkspace(ctx, w) })
}

func (s *Store) GetMember(ctx context.Context, id uuid.UUID) (m models.WorkspaceMember, err error) {
	err = s.locked(func(v *view) error { m, err = v.GetMember(ctx, id); return err })
	return m, err
}

func (s *Store) GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (m models.WorkspaceMember, err error) {
	err = s.locked(func(v *view) error { m, err = v.GetMembership(ctx, workspaceID, userID); return err })
	return m, err
}

func (s *Store) ListMembersByWorkspace(ctx context.Context, workspaceID uuid.UUID) (out []models.WorkspaceMember, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListMembersByWorkspace(ctx, workspaceID); return err })
	return out, err
}

func (s *Store) ListActiveMembershipsByUser(ctx context.Context, userID uuid.UUID) (out []models.WorkspaceMember, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListActiveMembershipsByUser(ctx, userID); return err })
	return out, err
}

func (s *Store) GetDefaultMembership(ctx context.Context, userID uuid.UUID) (m models.WorkspaceMember, err error) {
	err = s.locked(func(v *view) error { m, err = v.GetDefaultMembership(ctx, userID); return err })
	return m, err
}

func (s *Store) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return s.locked(func(v *view) error { return v.ClearDefault(ctx, userID) })
}

func (s *Store) CreateMember(ctx context.Context, m models.WorkspaceMember) error {
	return s.locked(func(v *view) error { return v.CreateMember(ctx, m) })
}

func (s *Store) UpdateMember(ctx context.Context, m models.WorkspaceMember) error {
	return s.locked(func(v *view) error { return v.UpdateMember(ctx, m) })
}

func (s *Store) GetJoinRequest(ctx context.Context, id uuid.UUID) (r models.WorkspaceJoinRequest, err error) {
	err = s.locked(func(v *view) error { r, err = v.GetJoinRequest(ctx, id); return err })
	return r, err
}

func (s *Store) GetPendingJoinRequest(ctx context.Context, workspaceID, userID uuid.UUID) (r models.WorkspaceJoinRequest, err error) {
	err = s.locked(func(v *view) error { r, err = v.GetPendingJoinRequest(ctx, workspaceID, userID); return err })
	return r, err
}

func (s *Store) ListJoinRequests(ctx context.Context, workspaceID uuid.UUID, status models.JoinStatus) (out []models.WorkspaceJoinRequest, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListJoinRequests(ctx, workspaceID, status); return err })
	return out, err
}

func (s *Store) CreateJoinRequest(ctx context.Context, r models.WorkspaceJoinRequest) error {
	return s.locked(func(v *view) error { return v.CreateJoinRequest(ctx, r) })
}

func (s *Store) UpdateJoinRequest(ctx context.Context, r models.WorkspaceJoinRequest) error {
	return s.locked(func(v *view) error { return v.UpdateJoinRequest(ctx, r) })
}
