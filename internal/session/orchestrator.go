// Package session drives a bearer token through issued → active → (revoked | expired).
// Nothing moves a revoked or expired token back to active.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/audit"
	"workspace-identity/internal/auth"
	"workspace-identity/internal/models"
	"workspace-identity/internal/revocation"
	"workspace-identity/internal/users"
	"workspace-identity/pkg/logger"
)

// Result is what a successful login or refresh hands back to the client.
type Result struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       uuid.UUID `json:"user_id"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

type Orchestrator struct {
	tokens *auth.Manager
	ledger revocation.Ledger
	users  *users.Service
	audit  *audit.Service
	clock  func() time.Time
}

var _ auth.Authenticator = (*Orchestrator)(nil)

func NewOrchestrator(tokens *auth.Manager, ledger revocation.Ledger, us *users.Service, au *audit.Service) *Orchestrator {
	return &Orchestrator{
		tokens: tokens,
		ledger: ledger,
		users:  us,
		audit:  au,
		clock:  time.Now,
	}
}

// LoginOAuth resolves the provider identity to a user and issues a token pair.
func (o *Orchestrator) LoginOAuth(ctx context.Context, p models.ProviderProfile) (Result, error) {
	u, _, err := o.users.FindOrCreateByProvider(ctx, p)
	if err != nil {
		return Result{}, err
	}

	pair, err := o.tokens.IssuePair(o.clock(), u.ID)
	if err != nil {
		return Result{}, fmt.Errorf("issue tokens: %w", err)
	}

	logger.From(ctx).Info("login", "user_id", u.ID.String(), "provider", u.Provider)
	return o.result(pair, u.ID), nil
}

// Logout revokes the access token and, when given, the refresh token issued with it.
// A correctly signed token that has already expired needs no ledger entry.
func (o *Orchestrator) Logout(ctx context.Context, accessToken, refreshToken string) error {
	now := o.clock()

	access, live, err := o.claimsForRevocation(accessToken, auth.TokenTypeAccess, now)
	if err != nil {
		return err
	}
	userID := uuid.Nil
	if live {
		if userID, err = access.UserID(); err != nil {
			return err
		}
		if _, err := o.ledger.Revoke(ctx, accessToken, remaining(access, now)); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}

	if refreshToken != "" {
		refresh, live, err := o.claimsForRevocation(refreshToken, auth.TokenTypeRefresh, now)
		if err != nil {
			return err
		}
		if live {
			owner, err := refresh.UserID()
			if err != nil {
				return err
			}
			if userID != uuid.Nil && owner != userID {
				return ErrSubjectMismatch
			}
			userID = owner
			if _, err := o.ledger.Revoke(ctx, refreshToken, remaining(refresh, now)); err != nil {
				return fmt.Errorf("revoke refresh token: %w", err)
			}
		}
	}

	if userID != uuid.Nil {
		logger.From(ctx).Info("logout", "user_id", userID.String())
		o.audit.Record(ctx, audit.Event{
			Type:        audit.EventSessionLogout,
			ActorUserID: userID,
			Message:     "session ended",
		})
	}
	return nil
}

// Refresh rotates a refresh token: the old one is spent exactly once.
func (o *Orchestrator) Refresh(ctx context.Context, refreshToken string) (Result, error) {
	now := o.clock()

	claims, err := o.tokens.ValidateType(refreshToken, auth.TokenTypeRefresh, now)
	if err != nil {
		return Result{}, err
	}
	revoked, err := o.ledger.IsRevoked(ctx, refreshToken)
	if err != nil {
		return Result{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Result{}, ErrTokenBlacklisted
	}

	userID, err := claims.UserID()
	if err != nil {
		return Result{}, err
	}
	if _, err := o.users.GetActiveUser(ctx, userID); err != nil {
		return Result{}, err
	}

	// Insert-if-absent: of two concurrent refreshes with one token, only one claims it.
	won, err := o.ledger.Revoke(ctx, refreshToken, remaining(claims, now))
	if err != nil {
		return Result{}, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !won {
		logger.From(ctx).Warn("refresh token reuse", "user_id", userID.String())
		return Result{}, ErrTokenBlacklisted
	}

	pair, err := o.tokens.IssuePair(now, userID)
	if err != nil {
		return Result{}, fmt.Errorf("issue tokens: %w", err)
	}
	return o.result(pair, userID), nil
}

func (o *Orchestrator) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return o.ledger.IsRevoked(ctx, token)
}

// Authenticate backs the HTTP auth gate. Tokens of soft-deleted users stop
// working immediately, not at expiry.
func (o *Orchestrator) Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error) {
	claims, err := o.tokens.ValidateType(accessToken, auth.TokenTypeAccess, o.clock())
	if err != nil {
		return uuid.Nil, err
	}
	revoked, err := o.ledger.IsRevoked(ctx, accessToken)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return uuid.Nil, ErrTokenBlacklisted
	}
	userID, err := claims.UserID()
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := o.users.GetActiveUser(ctx, userID); err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

// claimsForRevocation validates tok for logout. live is false for a token that
// verifies but has already expired. Every other failure is TokenInvalid with
// the precise kind kept in the chain.
func (o *Orchestrator) claimsForRevocation(tok string, want auth.TokenType, now time.Time) (auth.Claims, bool, error) {
	claims, err := o.tokens.ValidateType(tok, want, now)
	if err == nil {
		return claims, true, nil
	}
	if apperr.Is(err, apperr.TokenExpired) {
		if _, sigErr := o.tokens.ExtractExpiry(tok); sigErr == nil {
			return auth.Claims{}, false, nil
		}
	}
	return auth.Claims{}, false, apperr.Wrap(apperr.TokenInvalid, auth.ErrTokenInvalid.Message, err)
}

func remaining(c auth.Claims, now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

func (o *Orchestrator) result(pair auth.TokenPair, userID uuid.UUID) Result {
	return Result{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       userID,
		ExpiresIn:    int64(o.tokens.AccessTTL().Seconds()),
	}
}
