package teacher

import (
	"github.com/trezcool/gyaanbuddy/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Teacher struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Subjects       []string `json:"subjects"`
	Classes        []string `json:"classes"`
	Qualification  string   `json:"qualification,omitempty"`
	Experience     int      `json:"experience,omitempty"` // years
	Status         string   `json:"status"`
	DashboardUsage float64  `json:"dashboardUsage"` // percent
	JoinedAt       string   `json:"joinedAt,omitempty"`
	Avatar         string   `json:"avatar,omitempty"`
}

func (t Teacher) EntityID() string { return t.ID }

// Normalize fills the fields the backend may omit.
func (t Teacher) Normalize() Teacher {
	if t.Status == "" {
		t.Status = StatusActive
	}
	if t.Subjects == nil {
		t.Subjects = []string{}
	}
	if t.Classes == nil {
		t.Classes = []string{}
	}
	if t.DashboardUsage < 0 {
		t.DashboardUsage = 0
	}
	return t
}

type Stats struct {
	TotalTeachers     int     `json:"totalTeachers"`
	ActiveTeachers    int     `json:"activeTeachers"`
	InactiveTeachers  int     `json:"inactiveTeachers"`
	NewThisMonth      int     `json:"newThisMonth"`
	AvgDashboardUsage float64 `json:"averageDashboardUsage"`
}

type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	TeacherID string  `json:"teacherId"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Missions  int     `json:"missionsCreated"`
	Students  int     `json:"studentsReached"`
	Badge     string  `json:"badge,omitempty"`
}

// Extras is the teacher-specific state.
type Extras struct {
	Stats       Stats
	Leaderboard []LeaderboardEntry
}

// NewTeacher contains information needed to invite a new Teacher.
type NewTeacher struct {
	Name          string   `json:"name" validate:"required,notblank"`
	Email         string   `json:"email" validate:"required,email"`
	Phone         string   `json:"phone,omitempty" validate:"omitempty,e164"`
	Subjects      []string `json:"subjects,omitempty"`
	Classes       []string `json:"classes,omitempty"`
	Qualification string   `json:"qualification,omitempty"`
	Experience    int      `json:"experience,omitempty" validate:"gte=0"`
	Password      string   `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (nt *NewTeacher) Validate(v *core.Validator) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	return v.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
type UpdateTeacher struct {
	Name          string   `json:"name,omitempty"`
	Email         string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string   `json:"phone,omitempty" validate:"omitempty,e164"`
	Subjects      []string `json:"subjects,omitempty"`
	Classes       []string `json:"classes,omitempty"`
	Qualification string   `json:"qualification,omitempty"`
	Status        string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (ut *UpdateTeacher) Validate(v *core.Validator) error {
	ut.Name = core.CleanString(ut.Name)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	ut.Phone = core.CleanString(ut.Phone)
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	return v.Struct(ut)
}
