package domain

// Role classifies the acting principal. Exactly one applies at any time.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"

	// RoleNone means the principal could not be resolved to any role.
	// Unresolved principals are denied; role assignment is always explicit.
	RoleNone Role = ""
)

// ParseRole maps a stored or claimed role string to a Role, returning
// RoleNone for anything unrecognised.
func ParseRole(s string) Role {
	switch s {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleClient):
		return RoleClient
	default:
		return RoleNone
	}
}

// RoleRecord is the persisted role assignment keyed by user id. It is the
// fallback source when session claims carry no role.
type RoleRecord struct {
	UserID   string
	Role     Role
	ClientID string // set for client roles, empty for admins
}
