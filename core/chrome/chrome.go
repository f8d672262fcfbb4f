// Package chrome selects the navigation chrome (sidebar and topbar) wrapped around a view.
package chrome

import (
	"github.com/serene-minds/dashboard/core/route"
)

// Chrome is the closed set of chrome variants.
type Chrome int

const (
	Admin Chrome = iota
	School
	Student
)

// NavItem is a sidebar entry.
type NavItem struct {
	Label string
	Path  string
}

var (
	adminNav = []NavItem{
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "Schools", Path: "/schools"},
		{Label: "Countries", Path: "/countries"},
		{Label: "Cities", Path: "/cities"},
		{Label: "Classes", Path: "/classes"},
		{Label: "Divisions", Path: "/divisions"},
		{Label: "Emotions", Path: "/emotions"},
		{Label: "Moods", Path: "/moods"},
		{Label: "Reports", Path: "/reports"},
		{Label: "Analytics", Path: "/analytics"},
		{Label: "Profile", Path: "/profile"},
	}
	schoolNav = []NavItem{
		{Label: "Dashboard", Path: "/school/dashboard"},
		{Label: "Students", Path: "/school/students"},
		{Label: "Classes", Path: "/school/classes"},
		{Label: "Divisions", Path: "/school/divisions"},
		{Label: "Reports", Path: "/school/reports"},
		{Label: "Analytics", Path: "/school/analytics"},
	}
	studentNav = []NavItem{
		{Label: "My dashboard", Path: "/student/dashboard"},
		{Label: "Mood check-in", Path: "/student/mood"},
		{Label: "Journal", Path: "/student/journal"},
		{Label: "Profile", Path: "/student/profile"},
	}
)

// Select returns the chrome for path. It depends on nothing but the path.
func Select(path string, mode route.MatchMode) Chrome {
	switch route.ScopeOf(path, mode) {
	case route.ScopeStudent:
		return Student
	case route.ScopeSchool:
		return School
	default:
		return Admin
	}
}

func (c Chrome) String() string {
	switch c {
	case School:
		return "school"
	case Student:
		return "student"
	default:
		return "admin"
	}
}

// Nav returns a copy of the sidebar entries of c.
func (c Chrome) Nav() []NavItem {
	var items []NavItem
	switch c {
	case School:
		items = schoolNav
	case Student:
		items = studentNav
	default:
		items = adminNav
	}
	return append([]NavItem(nil), items...)
}

// Title is the topbar title.
func (c Chrome) Title() string {
	switch c {
	case School:
		return "Serene Minds · School"
	case Student:
		return "Serene Minds"
	default:
		return "Serene Minds · Admin"
	}
}

func (c Chrome) LogoutPath() string {
	if c == Student {
		return route.StudentLogoutPath
	}
	return route.LogoutPath
}

// Active reports whether item should be highlighted for path.
func (item NavItem) Active(path string) bool {
	want, got := route.Segments(item.Path), route.Segments(path)
	if len(got) < len(want) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
