package domain

// LocalRole is the closed role vocabulary of the LMS.
type LocalRole string

const (
	RoleManager LocalRole = "manager"
	RoleTeacher LocalRole = "teacher"
	RoleStudent LocalRole = "student"
)

func (r LocalRole) String() string { return string(r) }

// roleMap is the fixed mapping from the admissions role vocabulary onto the
// local one. Exhaustive over the external vocabulary; anything else is
// unknown and handled by the caller.
var roleMap = map[string]LocalRole{
	"admin":   RoleManager,
	"faculty": RoleTeacher,
	"student": RoleStudent,
}

// MapExternalRole translates an external role string onto the local
// vocabulary. ok is false for unknown external roles; callers decide the
// fallback (the reconciler downgrades to RoleStudent rather than failing
// the login).
func MapExternalRole(external string) (LocalRole, bool) {
	role, ok := roleMap[external]
	return role, ok
}
