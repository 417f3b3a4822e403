package domain

// Role is the closed set of account types on the marketplace. It decides
// which dashboards and links a session may reach.
type Role string

const (
	RoleTalent    Role = "talent"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a raw user_type value onto the closed Role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleTalent, RoleRecruiter, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// HomeRoute returns the role's landing route. An unrecognised role falls
// back to the generic authenticated landing page.
func (r Role) HomeRoute() string {
	switch r {
	case RoleTalent:
		return "/talent/dashboard"
	case RoleRecruiter:
		return "/recruiter/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	}
	return "/dashboard"
}

// Account status values reported by the marketplace backend.
const (
	StatusActive              = "active"
	StatusPendingVerification = "pending_verification"
	StatusSuspended           = "suspended"
)

// User is the identity record issued by the marketplace backend.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	UserType Role   `json:"user_type"`
	Status   string `json:"account_status,omitempty"`
}

// Role returns the user's role within the closed set; an unknown user_type
// yields ("", false) so callers fall back to the generic landing route.
func (u *User) Role() (Role, bool) {
	if u == nil {
		return "", false
	}
	return ParseRole(string(u.UserType))
}
