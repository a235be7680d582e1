package domain

// Role is the server-derived role embedded in a session.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleInstaller Role = "installer"
)

func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role string is exactly the admin role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the public view of a session subject.
type User struct {
	Username string     `json:"username"`
	Role     Role       `json:"role"`
	Projects []Resource `json:"projects"`
}
