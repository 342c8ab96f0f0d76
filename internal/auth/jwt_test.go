package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/config"
)

const testSecret = "test-secret-key-min-32-bytes-long!!"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       testSecret,
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{JWTSecret: "secret"}); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

func TestIssueAndExtractUserID_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	user := uuid.New()

	pair, err := m.IssuePair(now, user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Fatalf("expected two distinct token strings")
	}

	got, err := m.ExtractUserID(pair.AccessToken, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != user {
		t.Fatalf("expected %s, got %s", user, got)
	}

	claims, err := m.Validate(pair.RefreshToken, now)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh || claims.Issuer != "issuer" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected refresh expiry %v", claims.ExpiresAt)
	}
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	user := uuid.New()

	a, _ := m.IssueAccessToken(now, user)
	b, _ := m.IssueAccessToken(now, user)
	if a == b {
		t.Fatalf("tokens issued in the same second must differ")
	}
}

func TestValidate_ExpiredAtAndAfterExp(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.IssueAccessToken(now, uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Validate(tok, now.Add(15*time.Minute-time.Second)); err != nil {
		t.Fatalf("expected valid just before exp, got %v", err)
	}
	for _, at := range []time.Time{now.Add(15 * time.Minute), now.Add(time.Hour)} {
		_, err := m.Validate(tok, at)
		if apperr.KindOf(err) != apperr.TokenExpired {
			t.Fatalf("at %v: expected TokenExpired, got %v", at, err)
		}
	}
}

func TestValidate_ErrorKinds(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	other, err := NewManager(config.AuthConfig{
		JWTSecret:       "another-secret-key-min-32-bytes-long",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	foreign, _ := other.IssueAccessToken(now, uuid.New())

	base := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "issuer",
			Audience:  jwt.ClaimStrings{"aud"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		TokenType: TokenTypeAccess,
	}
	hs256 := signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), base)

	badType := base
	badType.TokenType = "id"
	wrongType := signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), badType)

	wrongIssuer := base
	wrongIssuer.Issuer = "someone-else"
	foreignIssuer := signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), wrongIssuer)

	cases := []struct {
		name  string
		token string
		want  apperr.Kind
	}{
		{"malformed", "not-a-jwt", apperr.TokenMalformed},
		{"foreign signature", foreign, apperr.TokenSignatureInvalid},
		{"unexpected algorithm", hs256, apperr.TokenUnsupported},
		{"unknown token type", wrongType, apperr.TokenUnsupported},
		{"wrong issuer", foreignIssuer, apperr.TokenUnsupported},
	}
	for _, tc := range cases {
		_, err := m.Validate(tc.token, now)
		if got := apperr.KindOf(err); got != tc.want {
			t.Fatalf("%s: expected %s, got %s (%v)", tc.name, tc.want, got, err)
		}
	}
}

func TestValidateType_RejectsWrongType(t *testing.T) {
	m := newTestManager(t)
	now := time.Now()
	p, err := m.IssuePair(now, uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.ValidateType(p.RefreshToken, TokenTypeAccess, now); apperr.KindOf(err) != apperr.TokenUnsupported {
		t.Fatalf("expected TokenUnsupported, got %v", err)
	}
	if _, err := m.ValidateType(p.AccessToken, TokenTypeAccess, now); err != nil {
		t.Fatalf("expected access token accepted, got %v", err)
	}
}

func TestExtractUserID_NonUUIDSubject(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	tok := signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "bob",
			Issuer:    "issuer",
			Audience:  jwt.ClaimStrings{"aud"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		TokenType: TokenTypeAccess,
	})
	if _, err := m.ExtractUserID(tok, now); apperr.KindOf(err) != apperr.TokenInvalid {
		t.Fatalf("expected TokenInvalid, got %v", err)
	}
}

func TestExtractExpiry_WorksForExpiredTokens(t *testing.T) {
	m := newTestManager(t)
	issued := time.Unix(1700000000, 0).UTC()
	tok, _ := m.IssueAccessToken(issued, uuid.New())

	exp, err := m.ExtractExpiry(tok)
	if err != nil {
		t.Fatalf("extract expiry: %v", err)
	}
	if !exp.Equal(issued.Add(15 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", exp)
	}

	forged := signRaw(t, jwt.SigningMethodHS512, []byte("forged-secret-key-min-32-bytes-long"), Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
		TokenType: TokenTypeAccess,
	})
	if _, err := m.ExtractExpiry(forged); apperr.KindOf(err) != apperr.TokenSignatureInvalid {
		t.Fatalf("expected signature check on expiry extraction, got %v", err)
	}
}
