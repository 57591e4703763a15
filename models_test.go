package users_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUser_EnsureDefaults(t *testing.T) {
	t.Run("fills id, user id, role, and authorities", func(t *testing.T) {
		user := &users.User{Username: "jdoe"}
		user.EnsureDefaults()

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.True(t, strings.HasPrefix(user.UserID, users.UserIDPrefix))
		assert.Len(t, user.UserID, len(users.UserIDPrefix)+users.UserIDDigits)
		assert.Equal(t, users.RoleUser, user.Role)
		assert.Equal(t, users.RoleUser.Authorities(), user.Authorities)
	})

	t.Run("keeps existing values", func(t *testing.T) {
		id := uuid.New()
		user := &users.User{ID: id, UserID: "ID_1234567890", Role: users.RoleAdmin}
		user.EnsureDefaults()

		assert.Equal(t, id, user.ID)
		assert.Equal(t, "ID_1234567890", user.UserID)
		assert.Equal(t, users.RoleAdmin, user.Role)
		assert.Equal(t, users.RoleAdmin.Authorities(), user.Authorities)
	})
}

func TestUser_AssignRole(t *testing.T) {
	user := &users.User{Username: "jdoe"}
	user.AssignRole(users.RoleUser)
	assert.Equal(t, users.RoleUser.Authorities(), user.Authorities)

	// promoting refreshes the snapshot
	user.AssignRole(users.RoleSuperAdmin)
	assert.Equal(t, users.RoleSuperAdmin, user.Role)
	assert.Equal(t, users.RoleSuperAdmin.Authorities(), user.Authorities)
}

func TestUser_Identity(t *testing.T) {
	user := &users.User{
		UserID:   "ID_1234567890",
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Role:     users.RoleManager,
	}

	identity := user.Identity()
	assert.Equal(t, "ID_1234567890", identity.ID())
	assert.Equal(t, "jdoe", identity.Username())
	assert.Equal(t, "jdoe@example.com", identity.Email())
	assert.Equal(t, string(users.RoleManager), identity.Role())
}
