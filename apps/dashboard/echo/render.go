package echoweb

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/chrome"
	"github.com/serene-minds/dashboard/core/user"
)

// Template names.
const (
	tmplPage           = "page"
	tmplLoading        = "loading"
	tmplNotFound       = "notfound"
	tmplError          = "error"
	tmplLogin          = "login"
	tmplRegister       = "register"
	tmplForgotPassword = "forgot_password"
	tmplResetPassword  = "reset_password"
)

var (
	//go:embed templates/*.gohtml
	templatesFS embed.FS

	pageTemplates = []string{
		tmplPage, tmplLoading, tmplNotFound, tmplError,
		tmplLogin, tmplRegister, tmplForgotPassword, tmplResetPassword,
	}

	// formTemplates maps the last segment of an auth-only route to its form.
	formTemplates = map[string]string{
		"login":           tmplLogin,
		"register":        tmplRegister,
		"forgot-password": tmplForgotPassword,
		"reset-password":  tmplResetPassword,
	}
)

// navLink is a sidebar entry as rendered.
type navLink struct {
	Label  string
	Path   string
	Active bool
}

// formData is the state of an auth form.
type formData struct {
	Action string
	// Base is "" or "/student"; links between auth forms stay in their namespace.
	Base   string
	Next   string
	Values map[string]string
	Fields map[string]string
	Error  string
	Notice string
}

// pageData is what every template receives.
type pageData struct {
	AppName          string
	Title            string
	Path             string
	Chrome           chrome.Chrome
	Nav              []navLink
	ShowNav          bool
	User             *user.User
	CSRF             string
	RefreshSeconds   int
	StudentNamespace bool
	Params           map[string]string
	Form             formData
}

// Renderer renders the embedded templates. They are parsed once, on first use.
type Renderer struct {
	fsys      fs.FS
	once      sync.Once
	err       error
	templates map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{fsys: templatesFS}
}

func (r *Renderer) parse() {
	base, err := template.ParseFS(r.fsys, "templates/layout.gohtml", "templates/form_error.gohtml")
	if err != nil {
		r.err = errors.Wrap(err, "parsing layout")
		return
	}

	r.templates = make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := base.Clone()
		if err != nil {
			r.err = errors.Wrapf(err, "cloning layout for %s", name)
			return
		}
		if tmpl, err = tmpl.ParseFS(r.fsys, "templates/"+name+".gohtml"); err != nil {
			r.err = errors.Wrapf(err, "parsing %s", name)
			return
		}
		r.templates[name] = tmpl
	}
}

// Check parses the templates and reports any error.
func (r *Renderer) Check() error {
	r.once.Do(r.parse)
	return r.err
}

// Render executes the layout around the named page. Broken templates cannot serve any view,
// so they surface as a shutdown error.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	if err := r.Check(); err != nil {
		return core.NewShutdownError(err.Error())
	}
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("unknown template %q", name)
	}
	return errors.Wrapf(tmpl.ExecuteTemplate(w, "layout", data), "rendering %s", name)
}
