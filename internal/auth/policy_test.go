package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"userbase/internal/model"
)

func TestParseRoleList(t *testing.T) {
	set := ParseRoleList("admin,manager")
	assert.Len(t, set, 2)
	assert.True(t, set.Contains(model.RoleAdmin))
	assert.True(t, set.Contains(model.RoleManager))
	assert.False(t, set.Contains(model.RoleGuest))

	// whitespace and case are tolerated, junk names are dropped
	set = ParseRoleList(" Admin , GUEST , superuser ,")
	assert.Len(t, set, 2)
	assert.True(t, set.Contains(model.RoleAdmin))
	assert.True(t, set.Contains(model.RoleGuest))

	assert.Empty(t, ParseRoleList(""))
	assert.Empty(t, ParseRoleList("root,wheel"))
}

func TestHasAnyRole(t *testing.T) {
	required := ParseRoleList("admin,manager")

	assert.True(t, HasAnyRole(model.RoleAdmin, required))
	assert.True(t, HasAnyRole(model.RoleManager, required))
	assert.False(t, HasAnyRole(model.RoleGuest, required))
	assert.False(t, HasAnyRole(model.Role("superuser"), required))
}
