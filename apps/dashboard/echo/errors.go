package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/chrome"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/user"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// API paths get JSON, views get an HTML page.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(conf *core.Config, logger core.Logger, renderer *Renderer, signalShutdown func()) echo.HTTPErrorHandler {
	mode := route.OptionsFromConfig(conf.Session).Mode

	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			var usr *user.User
			if h, hErr := getContextHolder(ctx); hErr == nil {
				usr = h.Session().User
			}
			logger.Error(message, errors.Wrap(err, message), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else if isAPIPath(ctx) {
			err = ctx.JSON(code, echo.Map{"error": message})
		} else {
			err = renderErrorPage(ctx, renderer, pageData{AppName: conf.AppName, Chrome: chrome.Select(ctx.Request().URL.Path, mode)}, code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func renderErrorPage(ctx echo.Context, renderer *Renderer, data pageData, code int, message string) error {
	data.Title = http.StatusText(code)
	data.Path = ctx.Request().URL.Path
	data.Form = formData{Error: message}
	if h, err := getContextHolder(ctx); err == nil {
		data.User = h.Session().User
	}

	name := tmplError
	if code == http.StatusNotFound {
		name = tmplNotFound
	}
	ctx.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	ctx.Response().WriteHeader(code)
	return renderer.Render(ctx.Response(), name, data, ctx)
}
