package domain

import (
	"slices"
	"time"
)

// LocalUser is a durable LMS account. Created lazily on first SSO login and
// resynchronized from the admissions identity on every subsequent login, so
// local edits to name or roles do not survive the next login.
type LocalUser struct {
	ID        string // ULID
	Email     string // unique key
	FirstName string
	LastName  string
	Roles     []LocalRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user holds the given role.
func (u LocalUser) HasRole(role LocalRole) bool {
	return slices.Contains(u.Roles, role)
}
