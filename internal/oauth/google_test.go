package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/config"
)

func testConfig() config.OAuthConfig {
	return config.OAuthConfig{
		GoogleClientID:     "client",
		GoogleClientSecret: "secret",
		GoogleRedirectURL:  "http://localhost/callback",
	}
}

// fakeGoogle serves a token endpoint and a userinfo endpoint.
func fakeGoogle(t *testing.T, info map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogle(t *testing.T, srv *httptest.Server) *Google {
	t.Helper()
	g, err := NewGoogle(testConfig(), WithEndpoint(oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo"))
	if err != nil {
		t.Fatalf("new google: %v", err)
	}
	return g
}

func TestNewGoogle_RequiresConfig(t *testing.T) {
	if _, err := NewGoogle(config.OAuthConfig{GoogleClientID: "only-id"}); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAuthCodeURL_CarriesStateAndScopes(t *testing.T) {
	g, err := NewGoogle(testConfig())
	if err != nil {
		t.Fatalf("new google: %v", err)
	}
	raw := g.AuthCodeURL("st-1")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "st-1" || q.Get("client_id") != "client" || !strings.Contains(q.Get("scope"), "email") {
		t.Fatalf("unexpected auth url %s", raw)
	}
}

func TestExchange_ReturnsVerifiedProfile(t *testing.T) {
	srv := fakeGoogle(t, map[string]any{
		"sub":            "1234",
		"email":          "alice@example.com",
		"email_verified": true,
		"name":           "Alice",
	})
	g := newTestGoogle(t, srv)

	p, err := g.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if p.Subject != "1234" || p.Email != "alice@example.com" || p.DisplayName != "Alice" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestExchange_RejectsUnverifiedEmail(t *testing.T) {
	srv := fakeGoogle(t, map[string]any{"sub": "1", "email": "x@example.com", "email_verified": false})
	g := newTestGoogle(t, srv)

	if _, err := g.Exchange(context.Background(), "good-code"); err != ErrEmailUnverified {
		t.Fatalf("expected ErrEmailUnverified, got %v", err)
	}
}

func TestExchange_RejectsMissingSubject(t *testing.T) {
	srv := fakeGoogle(t, map[string]any{"email": "x@example.com", "email_verified": true})
	g := newTestGoogle(t, srv)

	if _, err := g.Exchange(context.Background(), "good-code"); err != ErrIncompleteInfo {
		t.Fatalf("expected ErrIncompleteInfo, got %v", err)
	}
}

func TestExchange_BadCode(t *testing.T) {
	srv := fakeGoogle(t, map[string]any{})
	g := newTestGoogle(t, srv)

	_, err := g.Exchange(context.Background(), "bad-code")
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	if _, err := g.Exchange(context.Background(), " "); err != ErrExchangeFailed {
		t.Fatalf("expected ErrExchangeFailed for empty code, got %v", err)
	}
}

func TestNewState_Random(t *testing.T) {
	a, b := NewState(), NewState()
	if a == "" || a == b {
		t.Fatalf("expected distinct random states, got %q %q", a, b)
	}
}
