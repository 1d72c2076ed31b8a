package auth

import (
	"github.com/trezcool/gyaanbuddy/core"
)

// Roles
const (
	RolePrincipal = "principal"
	RoleTeacher   = "teacher"
)

var Roles = []string{RolePrincipal, RoleTeacher}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
	School   string `json:"school,omitempty"`
	SchoolID string `json:"schoolId,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

func (u User) EntityID() string { return u.ID }

func (u User) Normalize() User {
	u.Role = core.CleanString(u.Role, true /* lower */)
	return u
}

func (u User) IsPrincipal() bool { return u.Role == RolePrincipal }

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

// Extras is the auth-specific state.
type Extras struct {
	Token         string
	Authenticated bool
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(v *core.Validator) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return v.Struct(c)
}

type Registration struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=principal teacher"`
	School          string `json:"school,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

func (r *Registration) Validate(v *core.Validator) error {
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Role = core.CleanString(r.Role, true /* lower */)
	return v.Struct(r)
}

// ProfileUpdate defines what information may be provided to modify the logged in User.
type ProfileUpdate struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
}

func (pu *ProfileUpdate) Validate(v *core.Validator) error {
	pu.Name = core.CleanString(pu.Name)
	pu.Email = core.CleanString(pu.Email, true /* lower */)
	pu.Phone = core.CleanString(pu.Phone)
	return v.Struct(pu)
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
	PasswordConfirm string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (pc PasswordChange) Validate(v *core.Validator) error { return v.Struct(pc) }

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

// session is the body of a successful login or registration.
type session struct {
	Token        string `json:"token"`
	AccessToken  string `json:"accessToken"`
	AccessToken2 string `json:"access_token"`
	User         User   `json:"user"`
}

func (s session) token() string {
	switch {
	case s.Token != "":
		return s.Token
	case s.AccessToken != "":
		return s.AccessToken
	}
	return s.AccessToken2
}
