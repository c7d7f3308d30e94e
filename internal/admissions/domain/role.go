package domain

// ExternalRole is the closed role vocabulary of the admissions system. It is
// the role that travels across the SSO boundary; the LMS maps it onto its own
// vocabulary.
type ExternalRole string

const (
	RoleAdmin   ExternalRole = "admin"
	RoleFaculty ExternalRole = "faculty"
	RoleStudent ExternalRole = "student"
)

// ParseExternalRole validates a role string against the closed vocabulary.
func ParseExternalRole(s string) (ExternalRole, bool) {
	switch ExternalRole(s) {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return ExternalRole(s), true
	default:
		return "", false
	}
}

func (r ExternalRole) String() string { return string(r) }
