package domain

// Role names carried in the JWT and checked by the role middleware.
const (
	RoleStudent = "student" // sells projects
	RoleClient  = "client"  // buys projects
	RoleAdmin   = "admin"
)

// ValidRole reports whether name is one of the known role names.
func ValidRole(name string) bool {
	switch name {
	case RoleStudent, RoleClient, RoleAdmin:
		return true
	}
	return false
}
