package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/models"
	"workspace-identity/internal/rbac"
	"workspace-identity/internal/workspace"
)

type setDefaultRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type joinDecisionRequest struct {
	Status string `json:"status"`
}

// scope returns the requester and the workspace id bound by rbac.RequireWorkspace.
func scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	uid, ok := requester(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	wid, err := rbac.WorkspaceID(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return uid, wid, true
}

func (h Handlers) ListWorkspaces(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	list, err := h.Workspaces.GetUserWorkspaces(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": list})
}

func (h Handlers) CreateWorkspace(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	var req workspace.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.Workspaces.CreateWorkspace(c.Request.Context(), req, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (h Handlers) GetWorkspace(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	ws, err := h.Workspaces.GetWorkspace(c.Request.Context(), wid, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h Handlers) UpdateWorkspace(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	var req workspace.Update
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.Workspaces.UpdateWorkspace(c.Request.Context(), wid, req, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h Handlers) DeleteWorkspace(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	if err := h.Workspaces.DeleteWorkspace(c.Request.Context(), wid, uid); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) GetDefaultWorkspace(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	ws, err := h.Workspaces.GetDefaultWorkspace(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h Handlers) SetDefaultWorkspace(c *gin.Context) {
	uid, ok := requester(c)
	if !ok {
		return
	}
	var req setDefaultRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Workspaces.SetDefaultWorkspace(c.Request.Context(), req.WorkspaceID, uid); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) ListMembers(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	members, err := h.Workspaces.GetWorkspaceMembers(c.Request.Context(), wid, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h Handlers) UpdateMemberRole(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "member_id")
	if !ok {
		return
	}
	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Workspaces.UpdateMemberRole(c.Request.Context(), wid, memberID, models.Role(req.Role), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Handlers) RemoveMember(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "member_id")
	if !ok {
		return
	}
	if err := h.Workspaces.RemoveMember(c.Request.Context(), wid, memberID, uid); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) CreateJoinRequest(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	req, err := h.Workspaces.CreateJoinRequest(c.Request.Context(), wid, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h Handlers) ListJoinRequests(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	var status models.JoinStatus
	if q := c.Query("status"); q != "" {
		st, err := models.ParseJoinStatus(q)
		if err != nil {
			writeError(c, apperr.Wrap(apperr.InvalidArgument, "unknown status filter", err))
			return
		}
		status = st
	}
	list, err := h.Workspaces.GetJoinRequests(c.Request.Context(), wid, uid, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"join_requests": list})
}

func (h Handlers) UpdateJoinRequest(c *gin.Context) {
	uid, wid, ok := scope(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "request_id")
	if !ok {
		return
	}
	var req joinDecisionRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Workspaces.UpdateJoinRequest(c.Request.Context(), wid, requestID, models.JoinStatus(req.Status), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
