package route

import (
	_ "embed"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Well-known paths.
const (
	HomePath          = "/"
	LoginPath         = "/login"
	StudentLoginPath  = "/student/login"
	DashboardPath     = "/dashboard"
	SchoolHomePath    = "/school/dashboard"
	StudentHomePath   = "/student/dashboard"
	LogoutPath        = "/logout"
	StudentLogoutPath = "/student/logout"
)

//go:embed routes.yaml
var defaultTable []byte

// Descriptor is a row of the static route table.
type Descriptor struct {
	Path         string `yaml:"path"`
	Title        string `yaml:"title"`
	RequiresAuth bool   `yaml:"requires_auth"`
	AuthOnly     bool   `yaml:"auth_only"` // login/register/forgot/reset forms
	Home         bool   `yaml:"home"`      // redirects to the role home
	Scope        Scope  `yaml:"-"`
	segs         []string
}

type rawDescriptor struct {
	Descriptor `yaml:",inline"`
	Scope      *string `yaml:"scope"`
}

// Table is the immutable route table.
type Table struct {
	routes []Descriptor
}

// DefaultTable parses the embedded route table.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultTable)
}

// ParseTable parses a YAML route table.
func ParseTable(data []byte) (*Table, error) {
	var raws []rawDescriptor
	if err := yaml.Unmarshal(data, &raws); err != nil {
		return nil, errors.Wrap(err, "parsing route table")
	}

	seen := make(map[string]bool, len(raws))
	routes := make([]Descriptor, 0, len(raws))
	for i, raw := range raws {
		d := raw.Descriptor
		if !strings.HasPrefix(d.Path, "/") {
			return nil, errors.Errorf("route %d: path %q must start with /", i, d.Path)
		}
		if seen[d.Path] {
			return nil, errors.Errorf("route %d: duplicate path %q", i, d.Path)
		}
		seen[d.Path] = true
		if d.AuthOnly && d.RequiresAuth {
			return nil, errors.Errorf("route %q: auth_only routes cannot require auth", d.Path)
		}

		d.Scope = ScopeOf(d.Path, MatchSegment)
		if raw.Scope != nil {
			scope, err := ParseScope(*raw.Scope)
			if err != nil {
				return nil, errors.Wrapf(err, "route %q", d.Path)
			}
			d.Scope = scope
		}
		d.segs = Segments(d.Path)
		routes = append(routes, d)
	}
	return &Table{routes: routes}, nil
}

// Routes returns a copy of the table rows, in declaration order.
func (t *Table) Routes() []Descriptor {
	routes := make([]Descriptor, len(t.routes))
	copy(routes, t.routes)
	return routes
}

// Lookup finds the route matching path. Segments starting with ":" match any single segment;
// static matches win over parametrized ones.
func (t *Table) Lookup(path string) (Descriptor, bool) {
	segs := Segments(path)
	var (
		best      Descriptor
		bestScore = -1
	)
	for _, d := range t.routes {
		if score, ok := match(d.segs, segs); ok && score > bestScore {
			best, bestScore = d, score
		}
	}
	return best, bestScore >= 0
}

// match reports whether segs matches pattern and how many segments matched statically.
func match(pattern, segs []string) (int, bool) {
	if len(pattern) != len(segs) {
		return 0, false
	}
	var static int
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			continue
		}
		if p != segs[i] {
			return 0, false
		}
		static++
	}
	return static, true
}
