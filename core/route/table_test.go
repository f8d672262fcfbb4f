package route_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/user"
)

func TestDefaultTable(t *testing.T) {
	table, err := route.DefaultTable()
	require.NoError(t, err)

	authOnly := make(map[string]route.Scope)
	for _, d := range table.Routes() {
		if d.AuthOnly {
			authOnly[d.Path] = d.Scope
		}
	}
	assert.Equal(t, map[string]route.Scope{
		"/login":                   route.ScopeAdmin,
		"/register":                route.ScopeAdmin,
		"/forgot-password":         route.ScopeAdmin,
		"/reset-password":          route.ScopeAdmin,
		"/student/login":           route.ScopeStudent,
		"/student/register":        route.ScopeStudent,
		"/student/forgot-password": route.ScopeStudent,
		"/student/reset-password":  route.ScopeStudent,
	}, authOnly)

	for _, p := range []string{route.DashboardPath, route.SchoolHomePath, route.StudentHomePath} {
		d, ok := table.Lookup(p)
		require.True(t, ok, p)
		assert.True(t, d.RequiresAuth, p)
	}
}

func TestTable_Lookup(t *testing.T) {
	table, err := route.ParseTable([]byte(`
- path: /
  home: true
- path: /school/students
  requires_auth: true
- path: /school/students/:id
  requires_auth: true
- path: /school/students/new
  requires_auth: true
- path: /legacy
  scope: student
`))
	require.NoError(t, err)

	tests := []struct {
		path      string
		wantPath  string
		wantScope route.Scope
		wantOK    bool
	}{
		{path: "/", wantPath: "/", wantScope: route.ScopeAdmin, wantOK: true},
		{path: "", wantPath: "/", wantScope: route.ScopeAdmin, wantOK: true},
		{path: "/school/students", wantPath: "/school/students", wantScope: route.ScopeSchool, wantOK: true},
		{path: "/school/students/", wantPath: "/school/students", wantScope: route.ScopeSchool, wantOK: true},
		{path: "/school/students/12", wantPath: "/school/students/:id", wantScope: route.ScopeSchool, wantOK: true},
		{path: "/school/students/new", wantPath: "/school/students/new", wantScope: route.ScopeSchool, wantOK: true},
		{path: "/school/students/12?tab=moods", wantPath: "/school/students/:id", wantScope: route.ScopeSchool, wantOK: true},
		{path: "/legacy", wantPath: "/legacy", wantScope: route.ScopeStudent, wantOK: true},
		{path: "/school/students/12/extra"},
		{path: "/school"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d, ok := table.Lookup(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, d.Path)
			if ok {
				assert.Equal(t, tt.wantScope, d.Scope)
			}
		})
	}
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml list", data: "path: /"},
		{name: "relative path", data: "- path: dashboard"},
		{name: "duplicate", data: "- path: /a\n- path: /a"},
		{name: "auth only and protected", data: "- path: /login\n  auth_only: true\n  requires_auth: true"},
		{name: "bad scope", data: "- path: /a\n  scope: teacher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := route.ParseTable([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestTable_RoutesIsACopy(t *testing.T) {
	table, err := route.DefaultTable()
	require.NoError(t, err)

	routes := table.Routes()
	routes[0].Title = "changed"
	assert.NotEqual(t, "changed", table.Routes()[0].Title)
}

func TestScopeOf(t *testing.T) {
	tests := []struct {
		path        string
		wantSegment route.Scope
		wantPrefix  route.Scope
	}{
		{path: "/", wantSegment: route.ScopeAdmin, wantPrefix: route.ScopeAdmin},
		{path: "/dashboard", wantSegment: route.ScopeAdmin, wantPrefix: route.ScopeAdmin},
		{path: "/student", wantSegment: route.ScopeStudent, wantPrefix: route.ScopeStudent},
		{path: "/student/", wantSegment: route.ScopeStudent, wantPrefix: route.ScopeStudent},
		{path: "/student/dashboard", wantSegment: route.ScopeStudent, wantPrefix: route.ScopeStudent},
		{path: "/student?x=1", wantSegment: route.ScopeStudent, wantPrefix: route.ScopeStudent},
		{path: "/studentx", wantSegment: route.ScopeAdmin, wantPrefix: route.ScopeStudent},
		{path: "/students/list", wantSegment: route.ScopeAdmin, wantPrefix: route.ScopeStudent},
		{path: "/school/dashboard", wantSegment: route.ScopeSchool, wantPrefix: route.ScopeSchool},
		{path: "/schools", wantSegment: route.ScopeAdmin, wantPrefix: route.ScopeSchool},
		{path: "//student/x", wantSegment: route.ScopeStudent, wantPrefix: route.ScopeAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.wantSegment, route.ScopeOf(tt.path, route.MatchSegment))
			assert.Equal(t, tt.wantPrefix, route.ScopeOf(tt.path, route.MatchPrefix))
		})
	}
}

func TestScope_Roles(t *testing.T) {
	for _, role := range user.AllRoles {
		assert.Equal(t, role, route.ScopeForRole(role).Role())
	}

	var s route.Scope
	require.NoError(t, s.UnmarshalText([]byte("Student")))
	assert.Equal(t, route.ScopeStudent, s)
	assert.Error(t, s.UnmarshalText([]byte("teacher")))

	text, err := route.ScopeSchool.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "school", string(text))
}
