// Package rbac holds the workspace role gates. A gate is one rank comparison.
package rbac

import "workspace-identity/internal/models"

// Gates used by the membership engine.
const (
	GateMember       = models.RoleMember
	GateOwnerOrAdmin = models.RoleAdmin
	GateOwner        = models.RoleOwner
)

// Check reports whether role satisfies a gate requiring min.
func Check(role, min models.Role) bool {
	return role.AtLeast(min)
}
