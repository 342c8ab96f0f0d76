package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/audit"
	"workspace-identity/internal/auth"
	"workspace-identity/internal/config"
	"workspace-identity/internal/models"
	"workspace-identity/internal/revocation"
	"workspace-identity/internal/store/memory"
	"workspace-identity/internal/users"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	orch   *Orchestrator
	users  *users.Service
	ledger *revocation.MemoryLedger
	audit  *audit.MemoryRepo
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret-key-min-32-bytes-long!!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	clock := &fakeClock{now: time.Now().Truncate(time.Second)}
	ledger := revocation.NewMemoryLedger(clock.Now)
	us := users.NewService(memory.New())
	repo := audit.NewMemoryRepo()

	o := NewOrchestrator(tokens, ledger, us, audit.NewService(repo))
	o.clock = clock.Now
	return &fixture{orch: o, users: us, ledger: ledger, audit: repo, clock: clock}
}

func (f *fixture) login(t *testing.T, email string) Result {
	t.Helper()
	res, err := f.orch.LoginOAuth(context.Background(), models.ProviderProfile{Email: email, Subject: "sub-" + email, DisplayName: "Test"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return res
}

func TestLoginOAuth_IssuesPairForResolvedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.login(t, "alice@example.com")
	if res.UserID == uuid.Nil || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("expected access lifetime in seconds, got %d", res.ExpiresIn)
	}
	got, err := f.orch.Authenticate(ctx, res.AccessToken)
	if err != nil || got != res.UserID {
		t.Fatalf("authenticate: %v %v", got, err)
	}

	again := f.login(t, "alice@example.com")
	if again.UserID != res.UserID {
		t.Fatalf("expected same user on second login")
	}
}

func TestLoginOAuth_RejectsMissingSubject(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.LoginOAuth(context.Background(), models.ProviderProfile{Email: "x@example.com"})
	if apperr.KindOf(err) != apperr.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestLogout_BlacklistsLiveTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.login(t, "bob@example.com")

	if err := f.orch.Logout(ctx, res.AccessToken, res.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	for _, tok := range []string{res.AccessToken, res.RefreshToken} {
		ok, err := f.orch.IsBlacklisted(ctx, tok)
		if err != nil || !ok {
			t.Fatalf("expected token blacklisted, got %v %v", ok, err)
		}
	}
	if _, err := f.orch.Authenticate(ctx, res.AccessToken); apperr.KindOf(err) != apperr.TokenBlacklisted {
		t.Fatalf("expected TokenBlacklisted, got %v", err)
	}
	if _, err := f.orch.Refresh(ctx, res.RefreshToken); apperr.KindOf(err) != apperr.TokenBlacklisted {
		t.Fatalf("expected TokenBlacklisted on refresh, got %v", err)
	}

	events := f.audit.Events()
	if len(events) != 1 || events[0].Type != audit.EventSessionLogout || events[0].ActorUserID != res.UserID {
		t.Fatalf("expected one logout event, got %+v", events)
	}

	// Logging out twice is harmless.
	if err := f.orch.Logout(ctx, res.AccessToken, ""); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestLogout_ExpiredTokenIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.login(t, "carol@example.com")

	f.clock.Advance(16 * time.Minute)
	if err := f.orch.Logout(ctx, res.AccessToken, ""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	ok, err := f.orch.IsBlacklisted(ctx, res.AccessToken)
	if err != nil || ok {
		t.Fatalf("expired token should not be recorded, got %v %v", ok, err)
	}
}

func TestLogout_MalformedTokenFailsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.orch.Logout(ctx, "not-a-token", "")
	if apperr.KindOf(err) != apperr.TokenInvalid {
		t.Fatalf("expected TokenInvalid, got %v", err)
	}
	if !apperr.Is(err, apperr.TokenInvalid) {
		t.Fatalf("expected TokenInvalid in chain")
	}
}

func TestLogout_RefreshTokenOfAnotherUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.login(t, "a@example.com")
	b := f.login(t, "b@example.com")

	if err := f.orch.Logout(ctx, a.AccessToken, b.RefreshToken); err != ErrSubjectMismatch {
		t.Fatalf("expected ErrSubjectMismatch, got %v", err)
	}
	ok, _ := f.orch.IsBlacklisted(ctx, b.RefreshToken)
	if ok {
		t.Fatalf("foreign refresh token must not be revoked")
	}
}

func TestLogout_AccessTokenPassedAsRefresh(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "d@example.com")

	err := f.orch.Logout(context.Background(), res.AccessToken, res.AccessToken)
	if apperr.KindOf(err) != apperr.TokenInvalid {
		t.Fatalf("expected TokenInvalid, got %v", err)
	}
}

func TestRefresh_RotatesAndSpendsOldToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.login(t, "erin@example.com")

	f.clock.Advance(time.Second)
	next, err := f.orch.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.UserID != res.UserID || next.RefreshToken == res.RefreshToken {
		t.Fatalf("unexpected rotation %+v", next)
	}

	if _, err := f.orch.Refresh(ctx, res.RefreshToken); apperr.KindOf(err) != apperr.TokenBlacklisted {
		t.Fatalf("expected TokenBlacklisted on reuse, got %v", err)
	}
	if _, err := f.orch.Refresh(ctx, next.RefreshToken); err != nil {
		t.Fatalf("rotated token should refresh: %v", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "frank@example.com")

	if _, err := f.orch.Refresh(context.Background(), res.AccessToken); apperr.KindOf(err) != apperr.TokenUnsupported {
		t.Fatalf("expected TokenUnsupported, got %v", err)
	}
}

func TestRefresh_InactiveUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.login(t, "gina@example.com")

	if err := f.users.SoftDelete(ctx, res.UserID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.orch.Refresh(ctx, res.RefreshToken); apperr.KindOf(err) != apperr.UserNotActive {
		t.Fatalf("expected UserNotActive, got %v", err)
	}
	// The token was not spent by the failed attempt.
	if ok, _ := f.orch.IsBlacklisted(ctx, res.RefreshToken); ok {
		t.Fatalf("failed refresh must not revoke the token")
	}
}

func TestRefresh_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "hank@example.com")

	f.clock.Advance(25 * time.Hour)
	if _, err := f.orch.Refresh(context.Background(), res.RefreshToken); apperr.KindOf(err) != apperr.TokenExpired {
		t.Fatalf("expected TokenExpired, got %v", err)
	}
}

func TestRefresh_ConcurrentReuseHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.login(t, "ivy@example.com")

	const n = 16
	var (
		wg          sync.WaitGroup
		wins, spent atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orch.Refresh(ctx, res.RefreshToken)
			switch {
			case err == nil:
				wins.Add(1)
			case apperr.KindOf(err) == apperr.TokenBlacklisted:
				spent.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 || spent.Load() != n-1 {
		t.Fatalf("expected exactly one winner, got wins=%d spent=%d", wins.Load(), spent.Load())
	}
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	f := newFixture(t)
	res := f.login(t, "jo@example.com")

	if _, err := f.orch.Authenticate(context.Background(), res.RefreshToken); apperr.KindOf(err) != apperr.TokenUnsupported {
		t.Fatalf("expected TokenUnsupported, got %v", err)
	}
}

func TestAuthenticate_RejectsDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.login(t, "gone@example.com")

	if err := f.users.SoftDelete(ctx, res.UserID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.orch.Authenticate(ctx, res.AccessToken); apperr.KindOf(err) != apperr.UserNotActive {
		t.Fatalf("expected UserNotActive, got %v", err)
	}

	if err := f.users.Restore(ctx, res.UserID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got, err := f.orch.Authenticate(ctx, res.AccessToken); err != nil || got != res.UserID {
		t.Fatalf("expected restored user to authenticate, got %v %v", got, err)
	}
}
