package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"guest", "Guest", " MANAGER ", "admin"} {
		role, ok := ParseRole(raw)
		assert.True(t, ok, "raw=%q", raw)
		assert.True(t, role.Valid())
	}

	for _, raw := range []string{"", "superuser", "admins", "guest,admin"} {
		_, ok := ParseRole(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}
