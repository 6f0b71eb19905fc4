// Package fname derives file-safe names for bank entities. Entity names
// are free-form single-byte text; file names must be portable and unique
// under case-insensitive file systems.
package fname

import (
	"strconv"
	"strings"
)

// Sanitize maps an entity name to its file-safe form: every byte outside
// [A-Za-z0-9._ -] becomes an underscore, spaces become underscores, and an
// empty result falls back to "unnamed".
func Sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		default:
			sb.WriteByte('_')
		}
	}
	s := strings.Trim(sb.String(), ".")
	if s == "" {
		return "unnamed"
	}
	return s
}

// A Table assigns unique file-safe names. Uniqueness is case-insensitive;
// colliding names receive a deterministic numeric suffix in assignment
// order.
type Table struct {
	used map[string]bool
}

// NewTable returns an empty name table.
func NewTable() *Table {
	return &Table{used: make(map[string]bool)}
}

// Assign sanitizes the entity name and makes it unique within the table,
// appending "-2", "-3", ... on a case-insensitive collision. It reports
// whether a collision occurred.
func (t *Table) Assign(name string) (assigned string, collided bool) {
	s := Sanitize(name)
	assigned = s
	for n := 2; t.used[strings.ToLower(assigned)]; n++ {
		collided = true
		assigned = s + "-" + strconv.Itoa(n)
	}
	t.used[strings.ToLower(assigned)] = true
	return assigned, collided
}
