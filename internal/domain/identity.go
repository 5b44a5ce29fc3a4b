package domain

// Roles supplied by the identity service
const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// Actor is the authenticated caller of a core operation
type Actor struct {
	UserID string
	Role   string
	Name   string
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
