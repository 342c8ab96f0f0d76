package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/pkg/logger"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Authenticator resolves an access token to a user, consulting revocation.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if !strings.HasPrefix(raw, bearerPrefix) {
		return "", ErrMissingBearer
	}
	tok := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	if tok == "" {
		return "", ErrMissingBearer
	}
	return tok, nil
}

// RequireAccessToken authenticates the bearer token and injects the user into the request context.
// It does not check workspace roles; those are enforced by the membership engine.
func RequireAccessToken(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := BearerToken(c.GetHeader(authorizationHeader))
		if err != nil {
			abort(c, err)
			return
		}

		userID, err := a.Authenticate(c.Request.Context(), tok)
		if err != nil {
			abort(c, err)
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Set("user_id", userID)
		logger.Enrich(c, "user_id", userID.String())

		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	status, body := apperr.ToResponse(err)
	if status >= 500 {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}
