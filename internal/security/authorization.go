package security

import (
	"fmt"

	"github.com/calculadrink/platform/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermManageTeam     Permission = "manage_team"
	PermViewTeam       Permission = "view_team"
	PermUseApplication Permission = "use_application"
	PermManagePlatform Permission = "manage_platform" // admin console, master only
)

// rolePermissions maps the three account roles to what they may do inside
// their own company. Platform management is never granted by role; it
// requires the master flag on the session.
var rolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		PermUseApplication,
		PermViewTeam,
		PermManageTeam,
	},
	domain.RoleManager: {
		PermUseApplication,
		PermViewTeam,
		PermManageTeam,
	},
	domain.RoleBartender: {
		PermUseApplication,
	},
}

// HasPermission reports whether a role grants a permission.
func HasPermission(role domain.Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Authorize returns an error when the role lacks the permission.
func Authorize(role domain.Role, perm Permission) error {
	if !HasPermission(role, perm) {
		return fmt.Errorf("role %s lacks permission %s", role, perm)
	}
	return nil
}
