package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/teacher"
)

func (s *server) registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", s.login)
	ag.POST("/register", s.register)
	ag.POST("/forgot-password", s.forgotPassword)

	// authed endpoints
	ag.GET("/me", s.me, jwt)
	ag.PUT("/profile", s.updateProfile, jwt)
	ag.POST("/change-password", s.changePassword, jwt)
	ag.POST("/logout", s.logout, jwt)
}

func (s *server) login(ctx echo.Context) error {
	var data auth.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(s.opts.Validator); err != nil {
		return err
	}

	acc, err := s.authenticate(data.Email, data.Password)
	if err != nil {
		return err
	}
	return s.startSession(ctx, http.StatusOK, acc)
}

func (s *server) startSession(ctx echo.Context, code int, acc account) error {
	token, err := s.GenerateToken(acc)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return s.ok(ctx, code, echo.Map{"token": token, "user": acc.User})
}

func (s *server) register(ctx echo.Context) error {
	var data auth.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if err := data.Validate(s.opts.Validator); err != nil {
		return err
	}
	if _, taken := s.db.accounts.find(func(a account) bool { return a.Email == data.Email }); taken {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "email already registered"})
	}

	acc := account{User: auth.User{
		ID:     newID(),
		Name:   data.Name,
		Email:  data.Email,
		Role:   data.Role,
		Phone:  data.Phone,
		School: data.School,
	}}
	if err := acc.setPassword(data.Password); err != nil {
		return err
	}
	s.db.accounts.insert(acc.ID, acc)
	if acc.IsTeacher() {
		s.db.teachers.insert(acc.ID, teacher.Teacher{ID: acc.ID, Name: acc.Name, Email: acc.Email, Phone: acc.Phone}.Normalize())
	}
	return s.startSession(ctx, http.StatusCreated, acc)
}

func (s *server) forgotPassword(ctx echo.Context) error {
	var data auth.ForgotPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPassword")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := s.opts.Validator.Struct(data); err != nil {
		return err
	}
	if acc, ok := s.db.accounts.find(func(a account) bool { return a.Email == data.Email }); ok {
		s.opts.Mailer.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: acc.Name, Address: acc.Email}},
			Subject:      "Reset your password",
			TemplateName: "password_reset",
			TemplateData: map[string]string{"Name": acc.Name, "Code": newID()},
		})
	}
	// same answer whether the account exists or not
	return ctx.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "If the email address is associated with an account, reset instructions are on their way.",
	})
}

func (s *server) me(ctx echo.Context) error {
	acc, err := s.getContextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"user": acc.User})
}

func (s *server) updateProfile(ctx echo.Context) error {
	acc, err := s.getContextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	var data auth.ProfileUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileUpdate")
	}
	if err = data.Validate(s.opts.Validator); err != nil {
		return err
	}

	acc, _, err = s.db.accounts.update(acc.ID, func(a *account) error {
		usr, err := assign(a.User, data)
		a.User = usr
		return err
	})
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"user": acc.User})
}

func (s *server) changePassword(ctx echo.Context) error {
	acc, err := s.getContextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	var data auth.PasswordChange
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordChange")
	}
	if err = data.Validate(s.opts.Validator); err != nil {
		return err
	}
	if !acc.checkPassword(data.CurrentPassword) {
		return core.NewValidationError(nil, core.FieldError{Field: "currentPassword", Error: "current password is incorrect"})
	}

	if _, _, err = s.db.accounts.update(acc.ID, func(a *account) error {
		return a.setPassword(data.NewPassword)
	}); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, envelope{Success: true, Message: "Password changed."})
}

func (s *server) logout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, envelope{Success: true, Message: "Logged out."})
}
