package echoweb

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/user"
	"github.com/serene-minds/dashboard/services/authapi"
)

// registerAuthForms routes the form submissions of the auth-only views and the logout endpoints.
// Submissions go through the guard too: an authenticated session is redirected away.
func registerAuthForms(s *server) {
	for _, d := range s.Guard.Table().Routes() {
		if !d.AuthOnly {
			continue
		}
		var h echo.HandlerFunc
		switch formTemplates[lastSegment(d.Path)] {
		case tmplLogin:
			h = s.login
		case tmplRegister:
			h = s.register
		case tmplForgotPassword:
			h = s.forgotPassword
		case tmplResetPassword:
			h = s.resetPassword
		default:
			continue
		}
		s.app.POST(d.Path, h, s.sessionMiddleware, s.guardMiddleware)
	}

	s.app.POST(route.LogoutPath, s.logout, s.sessionMiddleware)
	s.app.POST(route.StudentLogoutPath, s.logout, s.sessionMiddleware)
}

// renderForm renders an auth form. Action and Base are derived from the route.
func (s *server) renderForm(ctx echo.Context, code int, name string, d route.Descriptor, form formData) error {
	h, err := getContextHolder(ctx)
	if err != nil {
		return err
	}
	form.Action = d.Path
	if s.Guard.InStudentNamespace(d.Path) {
		form.Base = "/student"
	}
	data := s.newPageData(ctx, h.Session(), d.Title)
	data.Form = form
	return ctx.Render(code, name, data)
}

// formFailure renders the form again with an inline error. Validation errors are shown per field;
// backend errors show their user-visible message.
func (s *server) formFailure(ctx echo.Context, name string, form formData, err error) error {
	dec := getContextDecision(ctx)

	code := http.StatusUnprocessableEntity
	err = core.TranslateValidation(err, s.Translator)
	var (
		vErr   *core.ValidationError
		apiErr *authapi.APIError
	)
	switch {
	case errors.As(err, &vErr):
		form.Fields = vErr.FieldMap()
		if vErr.Err != nil {
			form.Error = vErr.Error()
		}
	case errors.As(err, &apiErr):
		form.Error = authapi.Message(err)
		code = apiErr.Status
		if code < 400 || code >= 500 {
			code = http.StatusBadGateway
		}
		if apiErr.Status >= 500 || apiErr.Err != nil {
			s.Logger.Error("auth api call failed", err, map[string]interface{}{"path": dec.Route.Path})
		}
	default:
		return err
	}
	return s.renderForm(ctx, code, name, dec.Route, form)
}

func (s *server) login(ctx echo.Context) error {
	h, err := getContextHolder(ctx)
	if err != nil {
		return err
	}
	var data user.LoginForm
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginForm")
	}
	form := formData{Next: route.SafeNext(data.Next), Values: map[string]string{"email": data.Email}}
	if err = data.Validate(s.Validate); err != nil {
		return s.formFailure(ctx, tmplLogin, form, err)
	}

	res, err := s.Auth.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return s.formFailure(ctx, tmplLogin, form, err)
	}
	if err = h.Login(ctx.Request().Context(), res.User, res.Token); err != nil {
		return errors.Wrap(err, "logging in")
	}
	s.Logger.Info("user logged in", res.User)

	target := form.Next
	if target == "" {
		target = route.HomeFor(res.User.Role)
		if s.Guard.InStudentNamespace(getContextDecision(ctx).Route.Path) {
			target = route.StudentHomePath
		}
	}
	return ctx.Redirect(http.StatusSeeOther, target)
}

func (s *server) register(ctx echo.Context) error {
	var data user.RegisterForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterForm")
	}
	path := getContextDecision(ctx).Route.Path
	if s.Guard.InStudentNamespace(path) {
		data.Role = user.RoleStudent
	} else if data.Role == "" {
		data.Role = user.RoleSchool
	}
	form := formData{Values: map[string]string{"name": data.Name, "email": data.Email, "role": string(data.Role)}}
	if err := data.Validate(s.Validate); err != nil {
		return s.formFailure(ctx, tmplRegister, form, err)
	}

	err := s.Auth.Register(ctx.Request().Context(), authapi.RegisterRequest{
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
		Role:     data.Role,
	})
	if err != nil {
		return s.formFailure(ctx, tmplRegister, form, err)
	}
	return ctx.Redirect(http.StatusSeeOther, s.Guard.LoginPathFor(path)+"?"+url.Values{"registered": {"1"}}.Encode())
}

func (s *server) forgotPassword(ctx echo.Context) error {
	var data user.ForgotPasswordForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPasswordForm")
	}
	form := formData{Values: map[string]string{"email": data.Email}}
	if err := data.Validate(s.Validate); err != nil {
		return s.formFailure(ctx, tmplForgotPassword, form, err)
	}
	if err := s.Auth.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil {
		return s.formFailure(ctx, tmplForgotPassword, form, err)
	}

	form.Notice = "If an account exists for this email, a reset link is on its way."
	return s.renderForm(ctx, http.StatusOK, tmplForgotPassword, getContextDecision(ctx).Route, form)
}

func (s *server) resetPassword(ctx echo.Context) error {
	var data user.ResetPasswordForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPasswordForm")
	}
	form := formData{Values: map[string]string{"token": data.Token}}
	if err := data.Validate(s.Validate); err != nil {
		return s.formFailure(ctx, tmplResetPassword, form, err)
	}
	if err := s.Auth.ResetPassword(ctx.Request().Context(), data.Token, data.Password); err != nil {
		return s.formFailure(ctx, tmplResetPassword, form, err)
	}

	path := getContextDecision(ctx).Route.Path
	return ctx.Redirect(http.StatusSeeOther, s.Guard.LoginPathFor(path)+"?"+url.Values{"reset": {"1"}}.Encode())
}

// logout ends the session and returns to the login entry point of the namespace.
func (s *server) logout(ctx echo.Context) error {
	h, err := getContextHolder(ctx)
	if err != nil {
		return err
	}
	h.Logout(ctx.Request().Context())
	return ctx.Redirect(http.StatusSeeOther, s.Guard.LoginPathFor(ctx.Request().URL.Path))
}
