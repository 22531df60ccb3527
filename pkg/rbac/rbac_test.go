package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrder(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleAdministrator))
	assert.True(t, RoleAdministrator.AtLeast(RoleModer))
	assert.True(t, RoleModer.AtLeast(RoleUser))
	assert.False(t, RoleUser.AtLeast(RoleModer))
	assert.False(t, Role("root").AtLeast(RoleUser))
	assert.False(t, RoleUser.IsStaff())
	assert.True(t, RoleModer.IsStaff())
}

func TestPermissionMonotonicity(t *testing.T) {
	roles := []Role{RoleUser, RoleModer, RoleAdministrator, RoleAdmin}
	for i := 1; i < len(roles); i++ {
		lower, higher := roles[i-1], roles[i]
		for _, p := range lower.Permissions() {
			assert.Truef(t, higher.Has(p), "%s should include %s of %s", higher, p, lower)
		}
	}
}

func TestPermissionSets(t *testing.T) {
	assert.Empty(t, RoleUser.Permissions())
	assert.ElementsMatch(t, []Permission{PermViewStats, PermViewProfiles, PermEditProfile, PermViewMessages}, RoleModer.Permissions())
	assert.False(t, RoleAdministrator.Has(PermAssignRole))
	assert.True(t, RoleAdmin.Has(PermAssignRole))
	assert.Len(t, RoleAdmin.Permissions(), 12)
}

func TestPermissionsReturnsCopy(t *testing.T) {
	perms := RoleModer.Permissions()
	perms[0] = PermAssignRole
	assert.False(t, RoleModer.Has(PermAssignRole))
}

func TestSatisfiesAny(t *testing.T) {
	assert.True(t, RoleAdministrator.SatisfiesAny(RoleAdmin, RoleAdministrator))
	assert.False(t, RoleModer.SatisfiesAny(RoleAdmin, RoleAdministrator))
}

func TestCanActOnUser(t *testing.T) {
	tests := []struct {
		name   string
		actor  Role
		target Role
		action Action
		want   bool
	}{
		{"admin deletes user", RoleAdmin, RoleUser, ActionDelete, true},
		{"admin cannot delete admin", RoleAdmin, RoleAdmin, ActionDelete, false},
		{"administrator cannot delete admin", RoleAdministrator, RoleAdmin, ActionDelete, false},
		{"administrator cannot ban admin", RoleAdministrator, RoleAdmin, ActionBan, false},
		{"administrator bans user", RoleAdministrator, RoleUser, ActionBan, true},
		{"administrator bans moder", RoleAdministrator, RoleModer, ActionBan, true},
		{"administrator cannot assign role", RoleAdministrator, RoleUser, ActionAssignRole, false},
		{"admin assigns role", RoleAdmin, RoleUser, ActionAssignRole, true},
		{"moder cannot ban", RoleModer, RoleUser, ActionBan, false},
		{"moder cannot unban", RoleModer, RoleUser, ActionUnban, false},
		{"user cannot act", RoleUser, RoleUser, ActionBan, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanActOnUser(tt.actor, tt.target, tt.action))
		})
	}
}

func TestAssignable(t *testing.T) {
	assert.True(t, RoleModer.Assignable())
	assert.True(t, RoleUser.Assignable())
	assert.False(t, RoleAdmin.Assignable())
	assert.False(t, Role("superuser").Assignable())
}
