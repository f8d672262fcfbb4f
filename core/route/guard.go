package route

import (
	"net/url"
	"strings"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/core/user"
)

// Outcome is what the guard decided for a navigation.
type Outcome int

const (
	// Loading means the session is still initializing; nothing was decided.
	Loading Outcome = iota
	Render
	Redirect
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "not-found"
	}
}

// Decision is the result of Guard.Decide.
type Decision struct {
	Outcome Outcome
	Route   Descriptor
	// Target is the redirect destination.
	Target string
	// From is the originally requested path, kept so a successful login can return to it.
	From string
}

// RedirectURL is Target with From attached as the "next" query parameter.
func (d Decision) RedirectURL() string {
	if d.From == "" {
		return d.Target
	}
	return d.Target + "?" + url.Values{"next": {d.From}}.Encode()
}

// Options tune the guard.
type Options struct {
	Mode MatchMode
	// EnforceRoleScope redirects users away from routes outside their role's scope.
	EnforceRoleScope bool
}

// OptionsFromConfig reads the guard options from the session configuration.
func OptionsFromConfig(conf core.SessionConfig) Options {
	opts := Options{EnforceRoleScope: conf.EnforceRoleScope}
	if conf.LegacyPrefix {
		opts.Mode = MatchPrefix
	}
	return opts
}

// Guard decides whether a navigation renders, redirects or waits.
type Guard struct {
	table *Table
	opts  Options
}

func NewGuard(table *Table, opts Options) *Guard {
	return &Guard{table: table, opts: opts}
}

func (g *Guard) Table() *Table    { return g.table }
func (g *Guard) Mode() MatchMode  { return g.opts.Mode }
func (g *Guard) Options() Options { return g.opts }

// InStudentNamespace reports whether path is under /student.
func (g *Guard) InStudentNamespace(path string) bool {
	return ScopeOf(path, g.opts.Mode) == ScopeStudent
}

// LoginPathFor returns the login entry point for path.
func (g *Guard) LoginPathFor(path string) string {
	if g.InStudentNamespace(path) {
		return StudentLoginPath
	}
	return LoginPath
}

// Decide resolves a navigation to target (path plus optional query) for sess.
// It performs no I/O.
func (g *Guard) Decide(target string, sess session.Session) Decision {
	path := target
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if sess.Loading {
		return Decision{Outcome: Loading}
	}

	desc, ok := g.table.Lookup(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}

	if !sess.IsAuthenticated() {
		if desc.RequiresAuth {
			d := Decision{Outcome: Redirect, Route: desc, Target: g.LoginPathFor(path)}
			if !desc.Home {
				d.From = target
			}
			return d
		}
		return Decision{Outcome: Render, Route: desc}
	}

	role := sess.Role()
	switch {
	case desc.AuthOnly:
		home := DashboardPath
		if g.InStudentNamespace(path) {
			home = StudentHomePath
		}
		return Decision{Outcome: Redirect, Route: desc, Target: home}
	case desc.Home:
		return Decision{Outcome: Redirect, Route: desc, Target: HomeFor(role)}
	case g.opts.EnforceRoleScope && desc.RequiresAuth && ScopeForRole(role) != desc.Scope:
		return Decision{Outcome: Redirect, Route: desc, Target: HomeFor(role)}
	}
	return Decision{Outcome: Render, Route: desc}
}

// HomeFor returns the home page of role.
func HomeFor(role user.Role) string {
	switch role {
	case user.RoleSchool:
		return SchoolHomePath
	case user.RoleStudent:
		return StudentHomePath
	default:
		return DashboardPath
	}
}

// SafeNext returns next if it is a local absolute path, "" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
