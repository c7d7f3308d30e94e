package domain

import "time"

// DirectoryUser is a durable account in the admissions user directory. The
// directory is the source of truth for identities crossing the SSO boundary.
type DirectoryUser struct {
	Email        string // unique key
	FirstName    string
	LastName     string
	Role         ExternalRole
	PasswordHash string // argon2id encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the user's boundary-crossing identity.
func (u DirectoryUser) Identity() Identity {
	return Identity{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
