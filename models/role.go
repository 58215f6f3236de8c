package models

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser            Role = "USER"
	RoleServiceProvider Role = "SERVICE_PROVIDER"
	RoleAdmin           Role = "ADMIN"
	RoleSuperAdmin      Role = "SUPER_ADMIN"
)

var knownRoles = []Role{RoleUser, RoleServiceProvider, RoleAdmin, RoleSuperAdmin}

// ParseRole maps a stored or claimed role string onto the enum.
func ParseRole(s string) (Role, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for _, r := range knownRoles {
		if string(r) == normalized {
			return r, true
		}
	}
	return "", false
}

// IsAdmin reports whether the role carries admin privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}
