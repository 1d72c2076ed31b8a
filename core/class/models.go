package class

import (
	"github.com/trezcool/gyaanbuddy/core"
)

type Class struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Grade        string   `json:"grade"`
	Section      string   `json:"section,omitempty"`
	TeacherID    string   `json:"teacherId,omitempty"`
	TeacherName  string   `json:"teacherName,omitempty"`
	SubjectIDs   []string `json:"subjects"`
	StudentCount int      `json:"studentCount"`
	Room         string   `json:"room,omitempty"`
	AcademicYear string   `json:"academicYear,omitempty"`
}

func (c Class) EntityID() string { return c.ID }

func (c Class) Normalize() Class {
	if c.SubjectIDs == nil {
		c.SubjectIDs = []string{}
	}
	return c
}

// DisplayName is e.g. "Grade 7 - A".
func (c Class) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	name := "Grade " + c.Grade
	if c.Section != "" {
		name += " - " + c.Section
	}
	return name
}

type NewClass struct {
	Name         string   `json:"name" validate:"required,notblank"`
	Grade        string   `json:"grade" validate:"required"`
	Section      string   `json:"section,omitempty" validate:"omitempty,max=3"`
	TeacherID    string   `json:"teacherId,omitempty"`
	SubjectIDs   []string `json:"subjects,omitempty"`
	Room         string   `json:"room,omitempty"`
	AcademicYear string   `json:"academicYear,omitempty"`
}

func (nc *NewClass) Validate(v *core.Validator) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Grade = core.CleanString(nc.Grade)
	nc.Section = core.CleanString(nc.Section)
	return v.Struct(nc)
}

type UpdateClass struct {
	Name         string   `json:"name,omitempty"`
	Grade        string   `json:"grade,omitempty"`
	Section      string   `json:"section,omitempty" validate:"omitempty,max=3"`
	TeacherID    string   `json:"teacherId,omitempty"`
	SubjectIDs   []string `json:"subjects,omitempty"`
	Room         string   `json:"room,omitempty"`
	AcademicYear string   `json:"academicYear,omitempty"`
}

func (uc *UpdateClass) Validate(v *core.Validator) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Grade = core.CleanString(uc.Grade)
	uc.Section = core.CleanString(uc.Section)
	return v.Struct(uc)
}

// Assignment enrols students in a class.
type Assignment struct {
	StudentIDs []string `json:"studentIds" validate:"required,min=1,dive,required"`
}
