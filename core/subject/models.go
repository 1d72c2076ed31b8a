package subject

import (
	"strings"

	"github.com/trezcool/gyaanbuddy/core"
)

type Subject struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	Description   string   `json:"description,omitempty"`
	Grade         string   `json:"grade,omitempty"`
	Color         string   `json:"color,omitempty"`
	TeacherIDs    []string `json:"teachers"`
	QuestionCount int      `json:"questionCount"`
}

func (s Subject) EntityID() string { return s.ID }

func (s Subject) Normalize() Subject {
	s.Code = strings.ToUpper(s.Code)
	if s.TeacherIDs == nil {
		s.TeacherIDs = []string{}
	}
	return s
}

type NewSubject struct {
	Name        string   `json:"name" validate:"required,notblank"`
	Code        string   `json:"code" validate:"required,alphanum,max=10"`
	Description string   `json:"description,omitempty"`
	Grade       string   `json:"grade,omitempty"`
	Color       string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	TeacherIDs  []string `json:"teachers,omitempty"`
}

func (ns *NewSubject) Validate(v *core.Validator) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	ns.Description = core.CleanString(ns.Description)
	return v.Struct(ns)
}

type UpdateSubject struct {
	Name        string   `json:"name,omitempty"`
	Code        string   `json:"code,omitempty" validate:"omitempty,alphanum,max=10"`
	Description string   `json:"description,omitempty"`
	Grade       string   `json:"grade,omitempty"`
	Color       string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	TeacherIDs  []string `json:"teachers,omitempty"`
}

func (us *UpdateSubject) Validate(v *core.Validator) error {
	us.Name = core.CleanString(us.Name)
	us.Code = strings.ToUpper(core.CleanString(us.Code))
	us.Description = core.CleanString(us.Description)
	return v.Struct(us)
}
