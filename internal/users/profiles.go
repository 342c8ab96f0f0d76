package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-identity/internal/models"
	"workspace-identity/internal/store"
)

// ProfileUpdate changes one profile. Nil fields are left alone; values are trimmed.
// A blank nickname or email is ignored, a blank avatar URL clears the avatar.
type ProfileUpdate struct {
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	Nickname    *string
	Email       *string
	AvatarURL   *string
}

// GetProfile returns the user's profile in a workspace; uuid.Nil selects the global profile.
func (s *Service) GetProfile(ctx context.Context, userID, workspaceID uuid.UUID) (models.UserProfile, error) {
	p, err := s.store.GetProfile(ctx, userID, workspaceID)
	if errors.Is(err, store.ErrNotFound) {
		return models.UserProfile{}, ErrProfileNotFound
	}
	return p, err
}

func (s *Service) ListProfiles(ctx context.Context, userID uuid.UUID) ([]models.UserProfile, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListProfilesByUser(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, upd ProfileUpdate) (models.UserProfile, error) {
	var out models.UserProfile
	err := s.store.InTx(ctx, func(ctx context.Context, repo store.Repository) error {
		p, err := repo.GetProfile(ctx, upd.UserID, upd.WorkspaceID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrProfileNotFound
		}
		if err != nil {
			return err
		}

		if v, ok := trimmed(upd.Nickname); ok && v != "" {
			p.Nickname = v
		}
		if v, ok := trimmed(upd.Email); ok && v != "" {
			p.Email = &v
		}
		if v, ok := trimmed(upd.AvatarURL); ok {
			if v == "" {
				p.AvatarURL = nil
			} else {
				p.AvatarURL = &v
			}
		}
		p.UpdatedAt = s.clock().UTC()
		if err := repo.UpdateProfile(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *Service) DeleteProfile(ctx context.Context, userID, workspaceID uuid.UUID) error {
	err := s.store.DeleteProfile(ctx, userID, workspaceID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}

// SeedWorkspaceProfile gives a user a profile in workspaceID copied from the
// global profile, inside the caller's unit of work. An existing profile is kept.
func SeedWorkspaceProfile(ctx context.Context, repo store.Repository, u models.User, workspaceID uuid.UUID, now time.Time) error {
	if _, err := repo.GetProfile(ctx, u.ID, workspaceID); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	seed := models.UserProfile{Nickname: u.Email}
	if global, err := repo.GetProfile(ctx, u.ID, models.GlobalWorkspaceID); err == nil {
		seed = global
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return repo.CreateProfile(ctx, models.UserProfile{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      u.ID,
		Nickname:    seed.Nickname,
		Email:       seed.Email,
		AvatarURL:   seed.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func trimmed(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return strings.TrimSpace(*p), true
}
