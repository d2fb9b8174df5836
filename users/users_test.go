package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/tripsync-admin/users"
	"github.com/stretchr/testify/require"
)

func TestUser_HasPermission(t *testing.T) {
	t.Run("nil user", func(t *testing.T) {
		var u *users.User
		require.False(t, u.HasPermission("tours:write"))
	})

	t.Run("no permission list assigned", func(t *testing.T) {
		u := &users.User{ID: "u1", Role: users.RoleAdmin}
		require.False(t, u.PermissionsAssigned())
		require.False(t, u.HasPermission("tours:write"))
	})

	t.Run("empty permission list", func(t *testing.T) {
		u := &users.User{ID: "u1", Permissions: users.WithPermissions()}
		require.True(t, u.PermissionsAssigned())
		require.False(t, u.HasPermission("tours:write"))
	})

	t.Run("literal match only", func(t *testing.T) {
		u := &users.User{ID: "u1", Permissions: users.WithPermissions("tours:write")}
		require.True(t, u.HasPermission("tours:write"))
		require.False(t, u.HasPermission("tours"))
	})
}

func TestUser_HasRole(t *testing.T) {
	var nilUser *users.User
	require.False(t, nilUser.HasRole(users.RoleAdmin))

	u := &users.User{ID: "u1", Role: users.RoleTourGuide}
	require.True(t, u.HasRole(users.RoleTourGuide))
	require.False(t, u.HasRole(users.RoleAdmin))
}

func TestUser_PermissionsJSON(t *testing.T) {
	var withoutList users.User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","email":"a@b.c","role":"admin"}`), &withoutList))
	require.False(t, withoutList.PermissionsAssigned())

	var withEmptyList users.User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","email":"a@b.c","role":"admin","permissions":[]}`), &withEmptyList))
	require.True(t, withEmptyList.PermissionsAssigned())
}

func TestUser_Clone(t *testing.T) {
	u := &users.User{ID: "u1", Permissions: users.WithPermissions("a")}
	c := u.Clone()
	(*c.Permissions)[0] = "b"
	require.True(t, u.HasPermission("a"))
	require.False(t, u.HasPermission("b"))
}

func TestRole_Valid(t *testing.T) {
	require.True(t, users.RoleTourOperator.Valid())
	require.False(t, users.Role("guide").Valid())
}
