package route

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core/user"
)

// Scope is the namespace a path belongs to.
type Scope int

const (
	ScopeAdmin Scope = iota
	ScopeSchool
	ScopeStudent
)

const (
	schoolSegment  = "school"
	studentSegment = "student"
)

func (s Scope) String() string {
	switch s {
	case ScopeSchool:
		return "school"
	case ScopeStudent:
		return "student"
	default:
		return "admin"
	}
}

// Role is the user role owning the scope.
func (s Scope) Role() user.Role {
	switch s {
	case ScopeSchool:
		return user.RoleSchool
	case ScopeStudent:
		return user.RoleStudent
	default:
		return user.RoleAdmin
	}
}

// ScopeForRole maps a user role to its scope.
func ScopeForRole(role user.Role) Scope {
	switch role {
	case user.RoleSchool:
		return ScopeSchool
	case user.RoleStudent:
		return ScopeStudent
	default:
		return ScopeAdmin
	}
}

func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "":
		return ScopeAdmin, nil
	case schoolSegment:
		return ScopeSchool, nil
	case studentSegment:
		return ScopeStudent, nil
	}
	return ScopeAdmin, errors.Errorf("unknown scope %q", s)
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(text []byte) error {
	scope, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = scope
	return nil
}

// MatchMode selects how a path is mapped to its namespace.
type MatchMode int

const (
	// MatchSegment compares the first path segment: "/studentx" is not under "/student".
	MatchSegment MatchMode = iota
	// MatchPrefix is a raw prefix test: "/studentx" is under "/student".
	MatchPrefix
)

// ScopeOf returns the namespace of path.
func ScopeOf(path string, mode MatchMode) Scope {
	if mode == MatchPrefix {
		switch {
		case strings.HasPrefix(path, "/"+studentSegment):
			return ScopeStudent
		case strings.HasPrefix(path, "/"+schoolSegment):
			return ScopeSchool
		}
		return ScopeAdmin
	}

	switch FirstSegment(path) {
	case studentSegment:
		return ScopeStudent
	case schoolSegment:
		return ScopeSchool
	}
	return ScopeAdmin
}

// FirstSegment returns the first non-empty segment of path, ignoring any query or fragment.
func FirstSegment(path string) string {
	segs := Segments(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// Segments splits path on "/" dropping empty segments, the query and the fragment.
func Segments(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
