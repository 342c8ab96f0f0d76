package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/config"
)

var signingMethod = jwt.SigningMethodHS512

// Manager issues and verifies HS512 bearer tokens. It is stateless and safe for concurrent use.
type Manager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if err := cfg.ValidateAuth(); err != nil {
		return nil, err
	}

	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

/* ===================== ISSUE TOKENS ===================== */

func (m *Manager) IssueAccessToken(now time.Time, userID uuid.UUID) (string, error) {
	return m.issue(now, TokenTypeAccess, userID, m.accessTTL)
}

func (m *Manager) IssueRefreshToken(now time.Time, userID uuid.UUID) (string, error) {
	return m.issue(now, TokenTypeRefresh, userID, m.refreshTTL)
}

func (m *Manager) IssuePair(now time.Time, userID uuid.UUID) (TokenPair, error) {
	access, err := m.IssueAccessToken(now, userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.IssueRefreshToken(now, userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

/* ===================== VERIFY TOKENS ===================== */

// Validate verifies signature, expiry and the optional issuer/audience at now.
// There is no leeway: a token is expired at and after its exp instant.
func (m *Manager) Validate(tokenString string, now time.Time) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	var claims Claims
	if _, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, m.keyFunc); err != nil {
		return Claims{}, classify(err)
	}
	if !claims.TokenType.Valid() {
		return Claims{}, apperr.Wrap(apperr.TokenUnsupported, ErrTokenUnsupported.Message,
			fmt.Errorf("token_type %q", claims.TokenType))
	}
	return claims, nil
}

// ValidateType is Validate plus a token type check.
func (m *Manager) ValidateType(tokenString string, want TokenType, now time.Time) (Claims, error) {
	claims, err := m.Validate(tokenString, now)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != want {
		return Claims{}, apperr.Wrap(apperr.TokenUnsupported, ErrTokenUnsupported.Message,
			fmt.Errorf("expected %s token, got %s", want, claims.TokenType))
	}
	return claims, nil
}

// ExtractUserID validates the token and returns its subject as a user id.
func (m *Manager) ExtractUserID(tokenString string, now time.Time) (uuid.UUID, error) {
	claims, err := m.Validate(tokenString, now)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID()
}

// ExtractExpiry returns the exp instant even for expired tokens.
// The signature is still verified.
func (m *Manager) ExtractExpiry(tokenString string) (time.Time, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(tokenString, &claims, m.keyFunc); err != nil {
		return time.Time{}, classify(err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, apperr.Wrap(apperr.TokenUnsupported, ErrTokenUnsupported.Message, errors.New("exp missing"))
	}
	return claims.ExpiresAt.Time, nil
}

// UserID parses the subject claim.
func (c Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperr.Wrap(apperr.TokenInvalid, ErrTokenInvalid.Message, fmt.Errorf("subject is not a user id"))
	}
	return id, nil
}

/* ===================== INTERNAL ===================== */

// keyFunc only hands out the secret for HS512; anything else fails as unverifiable.
func (m *Manager) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != signingMethod {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return m.secret, nil
}

func (m *Manager) issue(now time.Time, tokenType TokenType, userID uuid.UUID, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("auth: user id is required")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: tokenType,
	}

	return jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
