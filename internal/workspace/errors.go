package workspace

import (
	"errors"

	"workspace-identity/internal/apperr"
	"workspace-identity/internal/store"
)

var (
	ErrWorkspaceNotFound     = apperr.New(apperr.WorkspaceNotFound, "workspace not found")
	ErrNotAMember            = apperr.New(apperr.NotAMember, "not a member of this workspace")
	ErrNotAuthorized         = apperr.New(apperr.NotAuthorized, "not authorized for this workspace")
	ErrMemberNotFound        = apperr.New(apperr.MemberNotFound, "member not found")
	ErrMemberNotInWorkspace  = apperr.New(apperr.MemberNotInWorkspace, "member does not belong to this workspace")
	ErrCannotRemoveOwner     = apperr.New(apperr.CannotRemoveOwner, "the workspace owner cannot be removed")
	ErrSelfRemoval           = apperr.New(apperr.SelfRemoval, "you cannot remove yourself")
	ErrOwnerRoleChange       = apperr.New(apperr.OwnerRoleChange, "the owner's role cannot be changed; promote another member to OWNER instead")
	ErrAlreadyMember         = apperr.New(apperr.AlreadyMember, "already a member of this workspace")
	ErrJoinRequestPending    = apperr.New(apperr.JoinRequestPending, "a join request is already pending")
	ErrRequestNotFound       = apperr.New(apperr.RequestNotFound, "join request not found")
	ErrRequestNotInWorkspace = apperr.New(apperr.RequestNotInWorkspace, "join request does not belong to this workspace")
	ErrRequestNotPending     = apperr.New(apperr.RequestNotPending, "join request is no longer pending")
	ErrNameRequired          = apperr.New(apperr.InvalidArgument, "workspace name is required")
	ErrInvalidRole           = apperr.New(apperr.InvalidArgument, "invalid role")
	ErrInvalidStatus         = apperr.New(apperr.InvalidArgument, "invalid join request status")
)

// conflictErr turns a uniqueness violation that slipped past the rule checks
// (a concurrent writer won) into a client-visible conflict.
func conflictErr(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return apperr.Wrap(apperr.Conflict, "concurrent update, retry the request", err)
	}
	return err
}
