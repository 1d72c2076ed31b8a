package report

import (
	"strings"
	"time"

	"github.com/trezcool/gyaanbuddy/core"
)

// Report types
const (
	TypeSchool  = "school"
	TypeClass   = "class"
	TypeStudent = "student"
	TypeTeacher = "teacher"
)

// Report statuses
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

// Report is a generated, downloadable report.
type Report struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	TargetID    string     `json:"targetId,omitempty"`
	Period      string     `json:"period"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
	Status      string     `json:"status"`
	URL         string     `json:"url,omitempty"`
}

func (r Report) EntityID() string { return r.ID }

func (r Report) Normalize() Report {
	r.Status = strings.ToLower(r.Status)
	if r.Status == "" {
		if r.URL != "" {
			r.Status = StatusReady
		} else {
			r.Status = StatusPending
		}
	}
	return r
}

type Overview struct {
	TotalStudents     int     `json:"totalStudents"`
	TotalTeachers     int     `json:"totalTeachers"`
	TotalClasses      int     `json:"totalClasses"`
	ActiveMissions    int     `json:"activeMissions"`
	AverageScore      float64 `json:"averageScore"`
	AverageAttendance float64 `json:"averageAttendance"`
	EngagementRate    float64 `json:"engagementRate"`
}

type SubjectAverage struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
}

type StudentRank struct {
	StudentID string  `json:"studentId"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
}

type ClassReport struct {
	ClassID        string           `json:"classId"`
	ClassName      string           `json:"className"`
	AverageScore   float64          `json:"averageScore"`
	CompletionRate float64          `json:"completionRate"`
	Subjects       []SubjectAverage `json:"subjects"`
	TopStudents    []StudentRank    `json:"topStudents"`
}

type StudentReport struct {
	StudentID         string           `json:"studentId"`
	Name              string           `json:"name"`
	AverageScore      float64          `json:"averageScore"`
	XP                int              `json:"xp"`
	MissionsCompleted int              `json:"missionsCompleted"`
	Subjects          []SubjectAverage `json:"subjects"`
	Strengths         []string         `json:"strengths"`
	Weaknesses        []string         `json:"weaknesses"`
}

// Request asks the backend to generate a report.
type Request struct {
	Type     string `json:"type" validate:"required,oneof=school class student teacher"`
	TargetID string `json:"targetId,omitempty" validate:"required_unless=Type school"`
	Period   string `json:"period" validate:"required,oneof=week month term year"`
	Format   string `json:"format,omitempty" validate:"omitempty,oneof=pdf csv"`
}

func (r *Request) Validate(v *core.Validator) error {
	r.Type = core.CleanString(r.Type, true /* lower */)
	r.Period = core.CleanString(r.Period, true)
	r.Format = core.CleanString(r.Format, true)
	return v.Struct(r)
}
