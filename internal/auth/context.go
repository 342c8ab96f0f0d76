package auth

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const ctxUserID ctxKey = iota

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserID returns the authenticated user, or ErrMissingBearer outside the auth gate.
func UserID(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctx.Value(ctxUserID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, ErrMissingBearer
}
