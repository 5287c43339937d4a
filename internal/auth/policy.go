package auth

import (
	"strings"

	"userbase/internal/model"
)

// RoleSet is a set of enumerated roles making up a route's requirement.
type RoleSet map[model.Role]struct{}

// ParseRoleList parses a comma-separated role requirement ("admin,manager")
// into a RoleSet. Unrecognized names are dropped rather than compared as
// raw strings.
func ParseRoleList(s string) RoleSet {
	set := RoleSet{}
	for _, part := range strings.Split(s, ",") {
		if role, ok := model.ParseRole(part); ok {
			set[role] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the role is part of the requirement.
func (rs RoleSet) Contains(role model.Role) bool {
	_, ok := rs[role]
	return ok
}

// HasAnyRole reports whether the principal's role satisfies the requirement:
// the user must hold at least one of the required roles. Every persisted
// user holds exactly one enumerated role, so a single membership test
// suffices.
func HasAnyRole(role model.Role, required RoleSet) bool {
	return required.Contains(role)
}
