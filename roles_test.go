package users_test

import (
	"testing"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
)

func TestRole_Authorities(t *testing.T) {
	cases := []struct {
		role users.Role
		want []string
	}{
		{users.RoleUser, []string{"user:read"}},
		{users.RoleHR, []string{"user:read", "user:update"}},
		{users.RoleManager, []string{"user:read", "user:update"}},
		{users.RoleAdmin, []string{"user:read", "user:update", "user:create"}},
		{users.RoleSuperAdmin, []string{"user:read", "user:update", "user:create", "user:delete"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.role.Authorities())
			assert.True(t, tc.role.IsValid())
		})
	}

	t.Run("unknown role has no authorities", func(t *testing.T) {
		role := users.Role("ROLE_WIZARD")
		assert.False(t, role.IsValid())
		assert.Empty(t, role.Authorities())
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		first := users.RoleAdmin.Authorities()
		first[0] = "tampered"
		assert.Equal(t, "user:read", users.RoleAdmin.Authorities()[0])
	})
}

func TestGetAllRoles(t *testing.T) {
	roles := users.GetAllRoles()
	assert.Len(t, roles, 5)
	assert.Equal(t, users.RoleUser, roles[0])
	assert.Equal(t, users.RoleSuperAdmin, roles[4])
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		input string
		want  users.Role
		ok    bool
	}{
		{"ROLE_USER", users.RoleUser, true},
		{"role_admin", users.RoleAdmin, true},
		{"manager", users.RoleManager, true},
		{"  HR  ", users.RoleHR, true},
		{"super_admin", users.RoleSuperAdmin, true},
		{"ROLE_WIZARD", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			role, ok := users.ParseRole(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, role)
			}
		})
	}
}
