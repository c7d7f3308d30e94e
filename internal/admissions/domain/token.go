package domain

import "time"

// SSOToken is the stored record of one outstanding token issuance. A token is
// live from insertion until first successful verification or expiry; the
// store never holds consumed or swept tokens.
type SSOToken struct {
	Token     string // opaque, unique, primary key
	Email     string
	FirstName string
	LastName  string
	Role      ExternalRole
	CreatedAt time.Time
}

// Identity returns the identity bound to the token.
func (t SSOToken) Identity() Identity {
	return Identity{
		Email:     t.Email,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		Role:      t.Role,
	}
}
