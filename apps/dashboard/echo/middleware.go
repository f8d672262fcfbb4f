package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/session"
)

const (
	contextHolderKey   = "sessionHolder"
	contextDecisionKey = "routeDecision"

	// loadingRefreshSeconds is how often the loading page reloads itself.
	loadingRefreshSeconds = 1
)

var errNoHolder = errors.New("session holder not found in echo.Context")

// sessionMiddleware attaches the holder of the browser session, starting a new session when the
// cookie is missing, expired or forged. It waits a bounded time for the holder to initialize.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sid, ok := s.cookies.read(ctx.Request())
		if !ok {
			sid = session.NewID()
		}
		if err := s.cookies.write(ctx.Response(), sid); err != nil {
			return errors.Wrap(err, "writing session cookie")
		}

		h := s.Sessions.Holder(sid)
		s.Sessions.Wait(ctx.Request().Context(), h, s.Conf.Session.InitWait)
		ctx.Set(contextHolderKey, h)
		return next(ctx)
	}
}

// guardMiddleware runs the route guard for the request path. Only a Render decision reaches next.
func (s *server) guardMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		h, err := getContextHolder(ctx)
		if err != nil {
			return err
		}

		dec := s.Guard.Decide(ctx.Request().URL.RequestURI(), h.Session())
		switch dec.Outcome {
		case route.Loading:
			return s.renderLoading(ctx)
		case route.Redirect:
			return ctx.Redirect(http.StatusSeeOther, dec.RedirectURL())
		case route.NotFound:
			return echo.ErrNotFound
		}
		ctx.Set(contextDecisionKey, dec)
		return next(ctx)
	}
}

func getContextHolder(ctx echo.Context) (*session.Holder, error) {
	if h, ok := ctx.Get(contextHolderKey).(*session.Holder); ok {
		return h, nil
	}
	return nil, errNoHolder
}

func getContextDecision(ctx echo.Context) route.Decision {
	dec, _ := ctx.Get(contextDecisionKey).(route.Decision)
	return dec
}

func getContextCSRF(ctx echo.Context) string {
	token, _ := ctx.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
