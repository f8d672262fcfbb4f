package user

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/serene-minds/dashboard/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)
)

// InitValidators registers the user validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
}

// LoginForm is submitted by the login views.
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
	Next     string `form:"next" json:"-"`
}

func (f *LoginForm) Validate(validate *validator.Validate) error {
	f.Email = core.CleanString(f.Email, true /* lower */)
	return validate.Struct(f)
}

// RegisterForm is submitted by the register views.
type RegisterForm struct {
	Name            string `form:"name" json:"name" validate:"required"`
	Email           string `form:"email" json:"email" validate:"required,email"`
	Password        string `form:"password" json:"password" validate:"required,pwdminlen"`
	PasswordConfirm string `form:"password_confirm" json:"-" validate:"required,eqfield=Password"`
	Role            Role   `form:"role" json:"role" validate:"omitempty,role"`
}

func (f *RegisterForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Role = Role(core.CleanString(string(f.Role), true /* lower */))
	return validate.Struct(f)
}

// ForgotPasswordForm is submitted by the forgot-password views.
type ForgotPasswordForm struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

func (f *ForgotPasswordForm) Validate(validate *validator.Validate) error {
	f.Email = core.CleanString(f.Email, true /* lower */)
	return validate.Struct(f)
}

// ResetPasswordForm is submitted by the reset-password views.
type ResetPasswordForm struct {
	Token           string `form:"token" json:"token" validate:"required"`
	Password        string `form:"password" json:"password" validate:"required,pwdminlen"`
	PasswordConfirm string `form:"password_confirm" json:"-" validate:"required,eqfield=Password"`
}

func (f *ResetPasswordForm) Validate(validate *validator.Validate) error {
	f.Token = core.CleanString(f.Token)
	return validate.Struct(f)
}

// Custom Validators

func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).Valid()
}

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return len([]rune(fl.Field().String())) >= pwdMinLen
}
