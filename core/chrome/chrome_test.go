package chrome_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serene-minds/dashboard/core/chrome"
	"github.com/serene-minds/dashboard/core/route"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		path string
		mode route.MatchMode
		want chrome.Chrome
	}{
		{path: "/student/dashboard", want: chrome.Student},
		{path: "/student/login", want: chrome.Student},
		{path: "/student", want: chrome.Student},
		{path: "/school/analytics", want: chrome.School},
		{path: "/school/students/12", want: chrome.School},
		{path: "/dashboard", want: chrome.Admin},
		{path: "/", want: chrome.Admin},
		{path: "/studentx", want: chrome.Admin},
		{path: "/studentx", mode: route.MatchPrefix, want: chrome.Student},
		{path: "/schools", want: chrome.Admin},
		{path: "/schools", mode: route.MatchPrefix, want: chrome.School},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, chrome.Select(tt.path, tt.mode))
		})
	}
}

func TestSelect_IsRecomputedPerPath(t *testing.T) {
	paths := []string{"/dashboard", "/student/mood", "/school/reports", "/dashboard"}
	want := []chrome.Chrome{chrome.Admin, chrome.Student, chrome.School, chrome.Admin}
	for i, p := range paths {
		assert.Equal(t, want[i], chrome.Select(p, route.MatchSegment), p)
	}
}

func TestNav_PointsAtTableRoutes(t *testing.T) {
	table, err := route.DefaultTable()
	require.NoError(t, err)

	for _, c := range []chrome.Chrome{chrome.Admin, chrome.School, chrome.Student} {
		t.Run(c.String(), func(t *testing.T) {
			nav := c.Nav()
			require.NotEmpty(t, nav)
			for _, item := range nav {
				d, ok := table.Lookup(item.Path)
				require.True(t, ok, item.Path)
				assert.True(t, d.RequiresAuth, item.Path)
				assert.Equal(t, c, chrome.Select(item.Path, route.MatchSegment), item.Path)
			}
		})
	}
}

func TestLogoutPath(t *testing.T) {
	assert.Equal(t, "/logout", chrome.Admin.LogoutPath())
	assert.Equal(t, "/logout", chrome.School.LogoutPath())
	assert.Equal(t, "/student/logout", chrome.Student.LogoutPath())
}

func TestNavItem_Active(t *testing.T) {
	item := chrome.NavItem{Label: "Students", Path: "/school/students"}
	assert.True(t, item.Active("/school/students"))
	assert.True(t, item.Active("/school/students/7"))
	assert.False(t, item.Active("/school/studentsx"))
	assert.False(t, item.Active("/school"))
}
