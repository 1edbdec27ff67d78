package domain

// Role names stored on users and embedded in JWT claims.
const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleEmployee = "ROLE_EMPLOYEE"
)

// ValidRole reports whether name is one of the known role names.
func ValidRole(name string) bool {
	return name == RoleAdmin || name == RoleEmployee
}
