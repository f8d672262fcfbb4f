// Package session holds "who is logged in": one Holder per browser session (or per CLI process),
// initialized once from persisted storage and mutated only through Login and Logout.
package session

import (
	"github.com/serene-minds/dashboard/core/user"
)

// Session is a snapshot of a Holder's state.
type Session struct {
	User    *user.User `json:"user"`
	Token   string     `json:"-"`
	Loading bool       `json:"loading"`
}

// IsAuthenticated is true iff both the user and the token are set.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// Role returns the role of the logged-in user, or "" when unauthenticated.
func (s Session) Role() user.Role {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.User.Role
}

// Record is the persisted {user, token} pair.
type Record struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func (r Record) valid() bool {
	return r.Token != "" && r.User.Valid()
}
