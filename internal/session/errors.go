package session

import "workspace-identity/internal/apperr"

var (
	ErrTokenBlacklisted = apperr.New(apperr.TokenBlacklisted, "token has been revoked")
	ErrSubjectMismatch  = apperr.New(apperr.TokenInvalid, "refresh token belongs to another user")
)
