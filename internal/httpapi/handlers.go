package httpapi

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/auth"
	"workspace-identity/internal/oauth"
	"workspace-identity/internal/session"
	"workspace-identity/internal/users"
	"workspace-identity/internal/workspace"
	"workspace-identity/pkg/logger"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Sessions   *session.Orchestrator
	Workspaces *workspace.Engine
	Users      *users.Service

	// Google is nil when OAuth is not configured.
	Google *oauth.Google
	// FrontendURL receives the browser after the OAuth callback.
	FrontendURL string
	// SecureCookies marks the OAuth state cookie Secure.
	SecureCookies bool
}

var (
	errInvalidJSON   = apperr.New(apperr.InvalidArgument, "invalid json body")
	errNotConfigured = apperr.New(apperr.InvalidArgument, "oauth provider is not configured")
)

// writeError renders err as {"code","message"} with its kind's status.
// Server-side failures are attached to the gin context so the request log line carries them.
func writeError(c *gin.Context, err error) {
	status, body := apperr.ToResponse(err)
	if status >= 500 {
		_ = c.Error(err)
	} else {
		logger.Enrich(c, "error_code", body.Code)
	}
	c.AbortWithStatusJSON(status, body)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, apperr.Wrap(apperr.InvalidArgument, errInvalidJSON.Message, err))
		return false
	}
	return true
}

// requester returns the authenticated user set by auth.RequireAccessToken.
func requester(c *gin.Context) (uuid.UUID, bool) {
	id, err := auth.UserID(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		writeError(c, apperr.New(apperr.InvalidArgument, name+" must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

func isKind(err error, kinds ...apperr.Kind) bool {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return false
	}
	for _, k := range kinds {
		if e.Kind == k {
			return true
		}
	}
	return false
}
