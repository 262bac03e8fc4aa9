package store

import "strings"

// IsUniqueViolation reports whether err is a SQLite uniqueness constraint
// violation. The modernc driver surfaces these as plain errors, so we
// match on the constraint message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
