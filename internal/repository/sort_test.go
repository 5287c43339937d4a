package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortClause(t *testing.T) {
	tests := []struct {
		orderBy   string
		direction string
		expected  string
	}{
		{"id", "asc", "id ASC"},
		{"id", "desc", "id DESC"},
		{"name", "asc", "name ASC"},
		{"name", "desc", "name DESC"},
		{"email", "asc", "email ASC"},
		{"email", "desc", "email DESC"},
		// unrecognized combinations silently fall back to id ascending
		{"role", "asc", "id ASC"},
		{"name", "descending", "id ASC"},
		{"", "", "id ASC"},
		{"password_hash", "desc", "id ASC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, sortClause(tt.orderBy, tt.direction),
			"orderBy=%q direction=%q", tt.orderBy, tt.direction)
	}
}
