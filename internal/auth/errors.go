package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"workspace-identity/internal/apperr"
)

var (
	ErrTokenMalformed        = apperr.New(apperr.TokenMalformed, "malformed token")
	ErrTokenExpired          = apperr.New(apperr.TokenExpired, "token expired")
	ErrTokenUnsupported      = apperr.New(apperr.TokenUnsupported, "unsupported token")
	ErrTokenSignatureInvalid = apperr.New(apperr.TokenSignatureInvalid, "invalid token signature")
	ErrTokenInvalid          = apperr.New(apperr.TokenInvalid, "invalid token")
	ErrMissingBearer         = apperr.New(apperr.Unauthenticated, "missing bearer token")
)

// classify maps a jwt parse error onto exactly one token error.
// Order matters: an expired token also carries ErrTokenInvalidClaims.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return apperr.Wrap(apperr.TokenMalformed, ErrTokenMalformed.Message, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperr.Wrap(apperr.TokenExpired, ErrTokenExpired.Message, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperr.Wrap(apperr.TokenSignatureInvalid, ErrTokenSignatureInvalid.Message, err)
	default:
		return apperr.Wrap(apperr.TokenUnsupported, ErrTokenUnsupported.Message, err)
	}
}
