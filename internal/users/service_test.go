package users

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/models"
	"workspace-identity/internal/store/memory"
)

func newTestService() (*Service, *memory.Store) {
	st := memory.New()
	return NewService(st), st
}

func TestFindOrCreateByProvider_CreatesUserAndGlobalProfile(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	u, created, err := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: " Alice@Example.com ", Subject: "g-1", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !created || u.Email != "alice@example.com" || !u.IsActive() {
		t.Fatalf("unexpected user %+v created=%v", u, created)
	}
	p, err := st.GetProfile(ctx, u.ID, models.GlobalWorkspaceID)
	if err != nil || p.Nickname != "Alice" {
		t.Fatalf("expected global profile, got %+v %v", p, err)
	}

	again, created, err := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "alice@example.com", Subject: "g-1"})
	if err != nil || created || again.ID != u.ID {
		t.Fatalf("expected existing user, got %+v created=%v err=%v", again, created, err)
	}
}

func TestFindOrCreateByProvider_NicknameFallsBackToEmail(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	u, _, err := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "bob@example.com", Subject: "g-2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	p, _ := st.GetProfile(ctx, u.ID, models.GlobalWorkspaceID)
	if p.Nickname != "bob@example.com" {
		t.Fatalf("expected email nickname, got %q", p.Nickname)
	}
}

func TestFindOrCreateByProvider_AttachesSubjectByEmail(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()

	existing := models.User{ID: uuid.New(), Email: "carol@example.com", Provider: "legacy", Lifecycle: models.Alive()}
	if err := st.CreateUser(ctx, existing); err != nil {
		t.Fatalf("seed: %v", err)
	}

	u, created, err := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "carol@example.com", Subject: "g-3"})
	if err != nil || created || u.ID != existing.ID {
		t.Fatalf("expected email match, got %+v created=%v err=%v", u, created, err)
	}
	if u.ProviderID == nil || *u.ProviderID != "g-3" || u.Provider != models.ProviderGoogle {
		t.Fatalf("expected provider attached, got %+v", u)
	}
}

func TestFindOrCreateByProvider_SoftDeletedUserRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "dan@example.com", Subject: "g-4"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "dan@example.com", Subject: "g-4"}); apperr.KindOf(err) != apperr.UserNotActive {
		t.Fatalf("expected UserNotActive, got %v", err)
	}
}

func TestFindOrCreateByProvider_RequiresEmailAndSubject(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.FindOrCreateByProvider(context.Background(), models.ProviderProfile{Email: "x@example.com"}); apperr.KindOf(err) != apperr.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, _, _ := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "erin@example.com", Subject: "g-5"})

	if err := svc.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.SoftDelete(ctx, u.ID); apperr.KindOf(err) != apperr.UserAlreadyDeleted {
		t.Fatalf("expected UserAlreadyDeleted, got %v", err)
	}
	if _, err := svc.GetActiveUser(ctx, u.ID); apperr.KindOf(err) != apperr.UserNotActive {
		t.Fatalf("expected UserNotActive, got %v", err)
	}
	if err := svc.Restore(ctx, u.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, err := svc.GetActiveUser(ctx, u.ID)
	if err != nil || got.DeletedAt != nil {
		t.Fatalf("expected restored user, got %+v %v", got, err)
	}
	if err := svc.SoftDelete(ctx, uuid.New()); apperr.KindOf(err) != apperr.UserNotFound {
		t.Fatalf("expected UserNotFound, got %v", err)
	}
}

func TestUpdateProfile_TrimIgnoreAndClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, _, _ := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "fay@example.com", Subject: "g-6", DisplayName: "Fay"})

	nick, email, avatar := "  Fay B ", " fay@work.example ", " https://img.example/fay.png "
	p, err := svc.UpdateProfile(ctx, ProfileUpdate{UserID: u.ID, WorkspaceID: models.GlobalWorkspaceID, Nickname: &nick, Email: &email, AvatarURL: &avatar})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Nickname != "Fay B" || *p.Email != "fay@work.example" || *p.AvatarURL != "https://img.example/fay.png" {
		t.Fatalf("unexpected profile %+v", p)
	}

	blank := "   "
	p, err = svc.UpdateProfile(ctx, ProfileUpdate{UserID: u.ID, WorkspaceID: models.GlobalWorkspaceID, Nickname: &blank, Email: &blank, AvatarURL: &blank})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Nickname != "Fay B" || p.Email == nil || p.AvatarURL != nil {
		t.Fatalf("blank nickname/email must be ignored and blank avatar must clear: %+v", p)
	}

	if _, err := svc.UpdateProfile(ctx, ProfileUpdate{UserID: u.ID, WorkspaceID: uuid.New(), Nickname: &nick}); apperr.KindOf(err) != apperr.ProfileNotFound {
		t.Fatalf("expected ProfileNotFound, got %v", err)
	}
}

func TestListAndDeleteProfiles(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	u, _, _ := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "gus@example.com", Subject: "g-7"})

	ws := uuid.New()
	if err := SeedWorkspaceProfile(ctx, st, u, ws, svc.clock()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ps, err := svc.ListProfiles(ctx, u.ID)
	if err != nil || len(ps) != 2 {
		t.Fatalf("expected 2 profiles, got %d %v", len(ps), err)
	}
	if err := svc.DeleteProfile(ctx, u.ID, ws); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteProfile(ctx, u.ID, ws); apperr.KindOf(err) != apperr.ProfileNotFound {
		t.Fatalf("expected ProfileNotFound, got %v", err)
	}
}

func TestSeedWorkspaceProfile_CopiesGlobalAndKeepsExisting(t *testing.T) {
	svc, st := newTestService()
	ctx := context.Background()
	u, _, _ := svc.FindOrCreateByProvider(ctx, models.ProviderProfile{Email: "hal@example.com", Subject: "g-8", DisplayName: "Hal"})
	ws := uuid.New()

	if err := SeedWorkspaceProfile(ctx, st, u, ws, svc.clock()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	p, err := st.GetProfile(ctx, u.ID, ws)
	if err != nil || p.Nickname != "Hal" {
		t.Fatalf("expected copied nickname, got %+v %v", p, err)
	}
	if err := SeedWorkspaceProfile(ctx, st, u, ws, svc.clock()); err != nil {
		t.Fatalf("second seed must be a no-op: %v", err)
	}
}
