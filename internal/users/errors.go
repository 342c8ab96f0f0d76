package users

import "workspace-identity/internal/apperr"

var (
	ErrUserNotFound       = apperr.New(apperr.UserNotFound, "user not found")
	ErrUserNotActive      = apperr.New(apperr.UserNotActive, "user is not active")
	ErrUserAlreadyDeleted = apperr.New(apperr.UserAlreadyDeleted, "user is already deleted")
	ErrProfileNotFound    = apperr.New(apperr.ProfileNotFound, "profile not found")
	ErrInvalidArgument    = apperr.New(apperr.InvalidArgument, "invalid argument")
)
