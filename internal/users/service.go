// Package users owns user identities and their per-workspace profiles.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
	"workspace-identity/pkg/logger"
)

type Service struct {
	store store.Store
	clock func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, clock: time.Now}
}

// FindOrCreateByProvider resolves the user behind an OAuth2 identity.
// Lookup order: provider subject, then an active user with the same email
// (the subject is attached), otherwise a new user plus its global profile.
func (s *Service) FindOrCreateByProvider(ctx context.Context, p models.ProviderProfile) (models.User, bool, error) {
	p.Email = normalizeEmail(p.Email)
	p.Subject = strings.TrimSpace(p.Subject)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if p.Email == "" || p.Subject == "" {
		return models.User{}, false, apperr.New(apperr.InvalidArgument, "email and provider subject are required")
	}

	u, created, err := s.findOrCreate(ctx, p)
	if errors.Is(err, store.ErrConflict) {
		// Lost a race against a concurrent first login; the row exists now.
		u, created, err = s.findOrCreate(ctx, p)
	}
	if err != nil {
		return models.User{}, false, err
	}
	if created {
		logger.From(ctx).Info("user created", "user_id", u.ID.String(), "provider", u.Provider)
	}
	return u, created, nil
}

func (s *Service) findOrCreate(ctx context.Context, p models.ProviderProfile) (models.User, bool, error) {
	var (
		out     models.User
		created bool
	)
	err := s.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		created = false
		now := s.clock().UTC()

		u, err := repo.GetUserByProviderID(ctx, p.Subject)
		switch {
		case err == nil:
			if !u.IsActive() {
				return ErrUserNotActive
			}
			out = u
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("lookup by provider: %w", err)
		}

		u, err = repo.GetUserByEmail(ctx, p.Email)
		switch {
		case err == nil:
			if !u.IsActive() {
				return ErrUserNotActive
			}
			sub := p.Subject
			u.Provider = models.ProviderGoogle
			u.ProviderID = &sub
			u.UpdatedAt = now
			if err := repo.UpdateUser(ctx, u); err != nil {
				return fmt.Errorf("attach provider: %w", err)
			}
			out = u
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("lookup by email: %w", err)
		}

		sub := p.Subject
		u = models.User{
			ID:         uuid.New(),
			Email:      p.Email,
			Provider:   models.ProviderGoogle,
			ProviderID: &sub,
			Lifecycle:  models.Alive(),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repo.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		nickname := p.DisplayName
		if nickname == "" {
			nickname = p.Email
		}
		if err := repo.CreateProfile(ctx, models.UserProfile{
			ID:          uuid.New(),
			WorkspaceID: models.GlobalWorkspaceID,
			UserID:      u.ID,
			Nickname:    nickname,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("create global profile: %w", err)
		}
		out, created = u, true
		return nil
	})
	return out, created, err
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

// GetActiveUser is GetUser that also rejects soft-deleted users.
func (s *Service) GetActiveUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if !u.IsActive() {
		return models.User{}, ErrUserNotActive
	}
	return u, nil
}

func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		u, err := repo.GetUser(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if !u.IsActive() {
			return ErrUserAlreadyDeleted
		}
		now := s.clock().UTC()
		u.SoftDelete(now)
		u.UpdatedAt = now
		return repo.UpdateUser(ctx, u)
	})
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) error {
	return s.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		u, err := repo.GetUser(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if u.IsActive() {
			return nil
		}
		u.Restore()
		u.UpdatedAt = s.clock().UTC()
		return repo.UpdateUser(ctx, u)
	})
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
