package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"workspace-identity/internal/audit"
	"workspace-identity/internal/auth"
	"workspace-identity/internal/config"
	"workspace-identity/internal/httpapi"
	"workspace-identity/internal/ratelimit"
	"workspace-identity/internal/revocation"
	"workspace-identity/internal/session"
	"workspace-identity/internal/store/memory"
	"workspace-identity/internal/users"
	"workspace-identity/internal/workspace"
)

func newTestServer(t *testing.T, authRequests int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewManager(config.AuthConfig{JWTSecret: "test-secret-key-min-32-bytes-long!!"})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := memory.New()
	au := audit.NewService(audit.NewMemoryRepo())
	us := users.NewService(st)
	h := httpapi.Handlers{
		Sessions:   session.NewOrchestrator(tokens, revocation.NewRedisLedger(rdb), us, au),
		Workspaces: workspace.NewEngine(st, au),
		Users:      us,
	}
	limiter := ratelimit.New(rdb, config.RateLimitConfig{AuthRequests: authRequests, AuthWindow: time.Minute})
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return newRouter(log, h, limiter, true)
}

type client struct {
	t     *testing.T
	r     http.Handler
	token string
}

func (c client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			c.t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code
}

func signIn(t *testing.T, r http.Handler, name string) client {
	t.Helper()
	var res session.Result
	code := client{t: t, r: r}.do(http.MethodPost, "/v1/auth/dev/login",
		map[string]string{"email": name + "@example.com", "subject": "sub-" + name, "display_name": name}, &res)
	if code != http.StatusOK {
		t.Fatalf("sign in %s: %d", name, code)
	}
	return client{t: t, r: r, token: res.AccessToken}
}

type errBody struct {
	Code string `json:"code"`
}

func TestMembershipScenario(t *testing.T) {
	r := newTestServer(t, 100)
	alice, bob, carol := signIn(t, r, "alice"), signIn(t, r, "bob"), signIn(t, r, "carol")

	var ws struct {
		ID string `json:"id"`
	}
	if code := alice.do(http.MethodPost, "/v1/workspaces", map[string]string{"name": "W"}, &ws); code != http.StatusCreated {
		t.Fatalf("create workspace: %d", code)
	}
	base := "/v1/workspaces/" + ws.ID

	// B asks to join, A approves.
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if code := bob.do(http.MethodPost, base+"/join-requests", nil, &req); code != http.StatusCreated || req.Status != "PENDING" {
		t.Fatalf("join request: %d %+v", code, req)
	}
	if code := alice.do(http.MethodPatch, base+"/join-requests/"+req.ID, map[string]string{"status": "APPROVED"}, &req); code != http.StatusOK || req.Status != "APPROVED" {
		t.Fatalf("approve: %d %+v", code, req)
	}

	var e errBody
	if code := bob.do(http.MethodPost, base+"/join-requests", nil, &e); code != http.StatusConflict || e.Code != "ALREADY_MEMBER" {
		t.Fatalf("expected 409 ALREADY_MEMBER, got %d %+v", code, e)
	}
	if code := alice.do(http.MethodPatch, base+"/join-requests/"+req.ID, map[string]string{"status": "APPROVED"}, &e); code != http.StatusConflict || e.Code != "REQUEST_NOT_PENDING" {
		t.Fatalf("expected 409 REQUEST_NOT_PENDING, got %d %+v", code, e)
	}

	// C joins as MEMBER and cannot update the workspace.
	var creq struct {
		ID string `json:"id"`
	}
	carol.do(http.MethodPost, base+"/join-requests", nil, &creq)
	alice.do(http.MethodPatch, base+"/join-requests/"+creq.ID, map[string]string{"status": "APPROVED"}, nil)
	if code := carol.do(http.MethodPatch, base, map[string]string{"name": "Mine"}, &e); code != http.StatusForbidden || e.Code != "NOT_AUTHORIZED" {
		t.Fatalf("expected 403 NOT_AUTHORIZED, got %d %+v", code, e)
	}

	// A removes B; B loses access.
	var members struct {
		Members []struct {
			MemberID string `json:"member_id"`
			Nickname string `json:"nickname"`
			Active   bool   `json:"is_active"`
		} `json:"members"`
	}
	if code := alice.do(http.MethodGet, base+"/members", nil, &members); code != http.StatusOK || len(members.Members) != 3 {
		t.Fatalf("list members: %d %+v", code, members)
	}
	var bobMember string
	for _, m := range members.Members {
		if m.Nickname == "bob" {
			bobMember = m.MemberID
		}
	}
	if code := alice.do(http.MethodDelete, base+"/members/"+bobMember, nil, nil); code != http.StatusNoContent {
		t.Fatalf("remove bob: %d", code)
	}
	if code := bob.do(http.MethodGet, base+"/members", nil, &e); code != http.StatusForbidden || e.Code != "NOT_A_MEMBER" {
		t.Fatalf("expected 403 NOT_A_MEMBER, got %d %+v", code, e)
	}

	var list struct {
		Workspaces []struct {
			ID string `json:"id"`
		} `json:"workspaces"`
	}
	if code := bob.do(http.MethodGet, "/v1/workspaces", nil, &list); code != http.StatusOK || len(list.Workspaces) != 0 {
		t.Fatalf("removed member should see no workspaces, got %d %+v", code, list)
	}
}

func TestWorkspaceRoutes_BadWorkspaceID(t *testing.T) {
	r := newTestServer(t, 100)
	alice := signIn(t, r, "alice")

	var e errBody
	if code := alice.do(http.MethodGet, "/v1/workspaces/not-a-uuid/members", nil, &e); code != http.StatusBadRequest || e.Code != "INVALID_ARGUMENT" {
		t.Fatalf("expected 400 INVALID_ARGUMENT, got %d %+v", code, e)
	}
	if code := alice.do(http.MethodGet, "/v1/workspaces/default", nil, &e); code != http.StatusNotFound || e.Code != "WORKSPACE_NOT_FOUND" {
		t.Fatalf("expected 404 without a default workspace, got %d %+v", code, e)
	}
}

func TestProtectedRoutes_RequireBearer(t *testing.T) {
	r := newTestServer(t, 100)
	anon := client{t: t, r: r}

	var e errBody
	if code := anon.do(http.MethodGet, "/v1/workspaces", nil, &e); code != http.StatusUnauthorized || e.Code != "UNAUTHENTICATED" {
		t.Fatalf("expected 401, got %d %+v", code, e)
	}
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	r := newTestServer(t, 2)
	anon := client{t: t, r: r}

	body := map[string]string{"refresh_token": "x"}
	for i := 0; i < 2; i++ {
		if code := anon.do(http.MethodPost, "/v1/auth/refresh", body, nil); code == http.StatusTooManyRequests {
			t.Fatalf("request %d limited too early", i)
		}
	}
	var e errBody
	if code := anon.do(http.MethodPost, "/v1/auth/refresh", body, &e); code != http.StatusTooManyRequests || e.Code != "RATE_LIMITED" {
		t.Fatalf("expected 429 RATE_LIMITED, got %d %+v", code, e)
	}
}

func TestProfiles_GlobalScope(t *testing.T) {
	r := newTestServer(t, 100)
	alice := signIn(t, r, "alice")

	var p struct {
		Nickname string `json:"nickname"`
	}
	if code := alice.do(http.MethodPatch, "/v1/profiles/global", map[string]string{"nickname": "  Al  "}, &p); code != http.StatusOK || p.Nickname != "Al" {
		t.Fatalf("update global profile: %d %+v", code, p)
	}
	if code := alice.do(http.MethodGet, "/v1/profiles/global", nil, &p); code != http.StatusOK || p.Nickname != "Al" {
		t.Fatalf("get global profile: %d %+v", code, p)
	}
}
