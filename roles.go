package users

import "strings"

// Role is a user's role. Each role maps to a fixed, ordered authority set.
type Role string

const (
	// RoleUser can read user data
	RoleUser Role = "ROLE_USER"
	// RoleHR can read and update user data
	RoleHR Role = "ROLE_HR"
	// RoleManager can read and update user data
	RoleManager Role = "ROLE_MANAGER"
	// RoleAdmin can read, update, and create user data
	RoleAdmin Role = "ROLE_ADMIN"
	// RoleSuperAdmin can read, update, create, and delete user data
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

// Authority strings embedded in tokens and checked by RequireAuthority.
const (
	AuthorityUserRead   = "user:read"
	AuthorityUserUpdate = "user:update"
	AuthorityUserCreate = "user:create"
	AuthorityUserDelete = "user:delete"
)

var roleAuthorities = map[Role][]string{
	RoleUser:       {AuthorityUserRead},
	RoleHR:         {AuthorityUserRead, AuthorityUserUpdate},
	RoleManager:    {AuthorityUserRead, AuthorityUserUpdate},
	RoleAdmin:      {AuthorityUserRead, AuthorityUserUpdate, AuthorityUserCreate},
	RoleSuperAdmin: {AuthorityUserRead, AuthorityUserUpdate, AuthorityUserCreate, AuthorityUserDelete},
}

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	_, ok := roleAuthorities[r]
	return ok
}

// Authorities returns a copy of the role's ordered authority set. Unknown
// roles get an empty set.
func (r Role) Authorities() []string {
	src, ok := roleAuthorities[r]
	if !ok {
		return []string{}
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// GetAllRoles returns all predefined roles in increasing privilege order
func GetAllRoles() []Role {
	return []Role{
		RoleUser,
		RoleHR,
		RoleManager,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// ParseRole safely parses a string into a Role. Matching is case
// insensitive and tolerates a missing ROLE_ prefix.
func ParseRole(s string) (Role, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if normalized == "" {
		return "", false
	}
	if !strings.HasPrefix(normalized, "ROLE_") {
		normalized = "ROLE_" + normalized
	}
	role := Role(normalized)
	return role, role.IsValid()
}
