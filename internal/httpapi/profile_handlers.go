package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/auth"
	"workspace-identity/internal/models"
	"workspace-identity/internal/users"
	"workspace-identity/pkg/logger"
)

// globalScope names the global profile in profile routes.
const globalScope = "global"

type profileUpdateRequest struct {
	Nickname  *string `json:"nickname"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// profileScope parses :workspace_id, accepting "global" for the global profile.
func profileScope(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Param("workspace_id"))
	if raw == globalScope {
		return models.GlobalWorkspaceID, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(c, apperr.New(apperr.InvalidArgument, `workspace_id must be a uuid or "global"`))
		return uuid.Nil, false
	}
	return id, true
}

func (h Handlers) ListProfiles(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	list, err := h.Users.ListProfiles(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": list})
}

func (h Handlers) GetProfile(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	wid, ok := profileScope(c)
	if !ok {
		return
	}
	p, err := h.Users.GetProfile(c.Request.Context(), uid, wid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) UpdateProfile(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	wid, ok := profileScope(c)
	if !ok {
		return
	}
	var req profileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Users.UpdateProfile(c.Request.Context(), users.ProfileUpdate{
		UserID:      uid,
		WorkspaceID: wid,
		Nickname:    req.Nickname,
		Email:       req.Email,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteMe soft-deletes the caller and revokes the bearer token used for the call.
func (h Handlers) DeleteMe(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	if err := h.Users.SoftDelete(c.Request.Context(), uid); err != nil {
		writeError(c, err)
		return
	}
	if tok, err := auth.BearerToken(c.GetHeader("Authorization")); err == nil {
		if err := h.Sessions.Logout(c.Request.Context(), tok, ""); err != nil {
			logger.FromGin(c).Warn("revoke token after account deletion failed", "err", err)
		}
	}
	c.Status(http.StatusNoContent)
}
