package domain

// Identity is the authenticated subject being handed off to the LMS. It only
// exists as request/response payload; the admissions session vouches for it
// at issuance time.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
	Role      ExternalRole
}
