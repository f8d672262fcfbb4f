package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/user"
)

// SessionInfo is the JSON view of the browser session.
type SessionInfo struct {
	Authenticated bool       `json:"authenticated"`
	Loading       bool       `json:"loading"`
	User          *user.User `json:"user"`
	Home          string     `json:"home,omitempty"`
}

func (s *server) sessionInfo(ctx echo.Context) error {
	h, err := getContextHolder(ctx)
	if err != nil {
		return err
	}
	sess := h.Session()
	info := SessionInfo{
		Authenticated: sess.IsAuthenticated(),
		Loading:       sess.Loading,
		User:          sess.User,
	}
	if info.Authenticated {
		info.Home = route.HomeFor(sess.Role())
	}
	return ctx.JSON(http.StatusOK, info)
}
