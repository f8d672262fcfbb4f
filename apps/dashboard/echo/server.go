// Package echoweb serves the dashboard views: it resolves the browser session, runs the route guard
// and renders the routed view inside the navigation chrome selected for its path.
package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/services/authapi"
)

// Authenticator is the backend the auth forms submit to.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (authapi.Result, error)
	Register(ctx context.Context, req authapi.RegisterRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

var _ Authenticator = (*authapi.Client)(nil)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Sessions   *session.Manager
		Guard      *route.Guard
		Auth       Authenticator
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		ServerDeps
		app      *echo.Echo
		renderer *Renderer
		cookies  *cookieCodec
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		ServerDeps: deps,
		app:        echo.New(),
		renderer:   NewRenderer(),
		cookies: newCookieCodec(
			deps.Conf.Session.CookieName,
			deps.Conf.SecretKey,
			deps.Conf.AppName,
			deps.Conf.Session.CookieTTL,
			!deps.Conf.Debug,
		),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = s.Conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.Conf.Server.WriteTimeout
	if s.Conf.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	} else {
		s.app.Logger.SetLevel(log.WARN)
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.Conf.Server.CSRF {
		s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			Skipper:        isAPIPath,
			TokenLookup:    "form:_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSameSite: http.SameSiteLaxMode,
		}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Conf, s.Logger, s.renderer, s.signalShutdown)
	s.app.Renderer = s.renderer
	s.app.Debug = s.Conf.Debug

	s.app.GET("/healthz", s.healthz)
	s.app.GET("/api/session", s.sessionInfo, s.sessionMiddleware)

	registerViews(s)
	registerAuthForms(s)
}

// Start listens until the server is shut down. Listen errors are sent to Errors().
func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.Conf.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) healthz(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "ok")
}

func isAPIPath(ctx echo.Context) bool {
	p := ctx.Request().URL.Path
	return p == "/healthz" || p == "/api" || strings.HasPrefix(p, "/api/")
}
