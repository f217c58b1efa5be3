package domain

import "strings"

// Role is the access-level tag gating which views a profile may open.
type Role string

const (
	RoleChief Role = "chief"
	RoleStaff Role = "staff"
)

// AllRoles lists every known role.
var AllRoles = []Role{RoleChief, RoleStaff}

// ParseRole maps a stored role string onto a Role.
// Unknown or empty values fall back to staff.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleChief:
		return RoleChief
	default:
		return RoleStaff
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleChief || r == RoleStaff
}
