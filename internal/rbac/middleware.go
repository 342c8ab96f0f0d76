package rbac

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
)

type ctxKey int

const ctxWorkspaceID ctxKey = iota

var ErrWorkspaceIDRequired = apperr.New(apperr.InvalidArgument, "workspace_id must be a uuid")

func WithWorkspaceID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxWorkspaceID, id)
}

// WorkspaceID returns the workspace scope set by RequireWorkspace.
func WorkspaceID(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctx.Value(ctxWorkspaceID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, ErrWorkspaceIDRequired
}

// RequireWorkspace enforces the tenant scope: the named path parameter must be a
// workspace id. It does not check membership; the membership engine gates roles
// inside the same transaction as the mutation.
func RequireWorkspace(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(strings.TrimSpace(c.Param(param)))
		if err != nil || id == uuid.Nil {
			status, body := apperr.ToResponse(ErrWorkspaceIDRequired)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Request = c.Request.WithContext(WithWorkspaceID(c.Request.Context(), id))
		c.Set("workspace_id", id)
		c.Next()
	}
}
