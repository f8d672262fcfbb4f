package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serene-minds/dashboard/core/chrome"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/session"
)

// registerViews routes a GET handler for every row of the route table. Unknown paths also go
// through the guard so that they wait for the session like any other view.
func registerViews(s *server) {
	for _, d := range s.Guard.Table().Routes() {
		s.app.GET(d.Path, s.view, s.sessionMiddleware, s.guardMiddleware)
	}
	s.app.RouteNotFound("/*", s.view, s.sessionMiddleware, s.guardMiddleware)
}

// view renders the routed view. The guard already decided that it renders.
func (s *server) view(ctx echo.Context) error {
	h, err := getContextHolder(ctx)
	if err != nil {
		return err
	}
	dec := getContextDecision(ctx)

	if dec.Route.AuthOnly {
		if name, ok := formTemplates[lastSegment(dec.Route.Path)]; ok {
			return s.renderForm(ctx, http.StatusOK, name, dec.Route, formData{
				Next:   route.SafeNext(ctx.QueryParam("next")),
				Values: map[string]string{"token": ctx.QueryParam("token")},
				Notice: formNotice(ctx),
			})
		}
	}

	data := s.newPageData(ctx, h.Session(), dec.Route.Title)
	data.Params = pathParams(ctx)
	return ctx.Render(http.StatusOK, tmplPage, data)
}

// newPageData fills what the layout needs: the chrome of the path and the session user.
func (s *server) newPageData(ctx echo.Context, sess session.Session, title string) pageData {
	path := ctx.Request().URL.Path
	c := chrome.Select(path, s.Guard.Mode())

	data := pageData{
		AppName:          s.Conf.AppName,
		Title:            title,
		Path:             path,
		Chrome:           c,
		User:             sess.User,
		ShowNav:          sess.IsAuthenticated(),
		CSRF:             getContextCSRF(ctx),
		StudentNamespace: s.Guard.InStudentNamespace(path),
	}
	if data.ShowNav {
		for _, item := range c.Nav() {
			data.Nav = append(data.Nav, navLink{Label: item.Label, Path: item.Path, Active: item.Active(path)})
		}
	}
	return data
}

func (s *server) renderLoading(ctx echo.Context) error {
	data := s.newPageData(ctx, session.Session{Loading: true}, "Loading")
	data.RefreshSeconds = loadingRefreshSeconds
	ctx.Response().Header().Set("Cache-Control", "no-store")
	ctx.Response().Header().Set("Retry-After", "1")
	return ctx.Render(http.StatusServiceUnavailable, tmplLoading, data)
}

func pathParams(ctx echo.Context) map[string]string {
	names := ctx.ParamNames()
	if len(names) == 0 {
		return nil
	}
	params := make(map[string]string, len(names))
	for i, name := range names {
		if name == "*" {
			continue
		}
		params[name] = ctx.ParamValues()[i]
	}
	return params
}

func lastSegment(path string) string {
	segs := route.Segments(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func formNotice(ctx echo.Context) string {
	switch {
	case ctx.QueryParam("registered") != "":
		return "Your account was created. You can now sign in."
	case ctx.QueryParam("reset") != "":
		return "Your password was reset. You can now sign in."
	}
	return ""
}
