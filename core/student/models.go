package student

import (
	"github.com/trezcool/gyaanbuddy/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Student struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	RollNumber  string  `json:"rollNumber,omitempty"`
	Email       string  `json:"email,omitempty"`
	Grade       string  `json:"grade,omitempty"`
	Section     string  `json:"section,omitempty"`
	ClassID     string  `json:"classId,omitempty"`
	ClassName   string  `json:"className,omitempty"`
	ParentName  string  `json:"parentName,omitempty"`
	ParentPhone string  `json:"parentPhone,omitempty"`
	Status      string  `json:"status"`
	XP          int     `json:"xp"`
	Level       int     `json:"level"`
	Streak      int     `json:"streak"`
	AvgScore    float64 `json:"averageScore"`
}

func (s Student) EntityID() string { return s.ID }

func (s Student) Normalize() Student {
	if s.Status == "" {
		s.Status = StatusActive
	}
	if s.Level == 0 {
		s.Level = 1
	}
	return s
}

type SubjectScore struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

type TrendPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

type Performance struct {
	StudentID         string         `json:"studentId"`
	AverageScore      float64        `json:"averageScore"`
	Accuracy          float64        `json:"accuracy"`
	MissionsCompleted int            `json:"missionsCompleted"`
	Subjects          []SubjectScore `json:"subjects"`
	Trend             []TrendPoint   `json:"trend"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}

// Extras is the student-specific state.
type Extras struct {
	Performance  map[string]Performance // by student id
	ImportResult *ImportResult
}

// NewStudent contains information needed to enrol a new Student.
type NewStudent struct {
	Name        string `json:"name" validate:"required,notblank"`
	RollNumber  string `json:"rollNumber" validate:"required,alphanum_"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Grade       string `json:"grade" validate:"required"`
	Section     string `json:"section,omitempty"`
	ClassID     string `json:"classId,omitempty"`
	ParentName  string `json:"parentName,omitempty"`
	ParentPhone string `json:"parentPhone,omitempty" validate:"omitempty,e164"`
}

func (ns *NewStudent) Validate(v *core.Validator) error {
	ns.Name = core.CleanString(ns.Name)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Section = core.CleanString(ns.Section)
	return v.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Grade       string `json:"grade,omitempty"`
	Section     string `json:"section,omitempty"`
	ClassID     string `json:"classId,omitempty"`
	ParentName  string `json:"parentName,omitempty"`
	ParentPhone string `json:"parentPhone,omitempty" validate:"omitempty,e164"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (us *UpdateStudent) Validate(v *core.Validator) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Status = core.CleanString(us.Status, true /* lower */)
	return v.Struct(us)
}
