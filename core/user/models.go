package user

import (
	"strings"
)

// Role is the role scope of a user; it selects the portal, the chrome and the home page.
type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleSchool  Role = "school"
	RoleStudent Role = "student"
)

var (
	AllRoles = []Role{RoleAdmin, RoleSchool, RoleStudent}

	rolePriorities = map[Role]int{
		RoleAdmin:   30,
		RoleSchool:  20,
		RoleStudent: 10,
	}

	roleNames = map[Role]string{
		RoleAdmin:   "Administrator",
		RoleSchool:  "School",
		RoleStudent: "Student",
	}
)

// ParseRole parses a role name, case-insensitively. Unknown names return ("", false).
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	return role, role.Valid()
}

func (r Role) Valid() bool {
	_, ok := rolePriorities[r]
	return ok
}

func (r Role) Priority() int {
	return rolePriorities[r]
}

func (r Role) Name() string {
	return roleNames[r]
}

func (r Role) String() string { return string(r) }

// User is the record of a logged-in user as returned by the auth API.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsSchool() bool  { return u.Role == RoleSchool }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// Valid reports whether the record carries the minimum a session needs: a name and a known role.
func (u User) Valid() bool {
	return strings.TrimSpace(u.Name) != "" && u.Role.Valid()
}
