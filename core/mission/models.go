package mission

import (
	"strings"
	"time"

	"github.com/trezcool/gyaanbuddy/core"
)

// Mission statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

type Mission struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	SubjectID   string     `json:"subjectId"`
	ClassIDs    []string   `json:"classIds"`
	QuestionIDs []string   `json:"questionIds"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Duration    int        `json:"duration"` // minutes
	TotalPoints int        `json:"totalPoints"`
	XPReward    int        `json:"xpReward"`
}

func (m Mission) EntityID() string { return m.ID }

func (m Mission) Normalize() Mission {
	m.Status = strings.ToLower(m.Status)
	if m.Status == "" {
		m.Status = StatusDraft
	}
	if m.ClassIDs == nil {
		m.ClassIDs = []string{}
	}
	if m.QuestionIDs == nil {
		m.QuestionIDs = []string{}
	}
	return m
}

// Overdue reports whether a published mission is past its due date at now.
func (m Mission) Overdue(now time.Time) bool {
	return m.Status == StatusPublished && m.DueDate != nil && now.After(*m.DueDate)
}

// Attempt is the result of one student on a mission.
type Attempt struct {
	StudentID   string     `json:"studentId"`
	StudentName string     `json:"studentName"`
	Score       float64    `json:"score"`
	XPEarned    int        `json:"xpEarned"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Results struct {
	MissionID      string    `json:"missionId"`
	Assigned       int       `json:"assigned"`
	Completed      int       `json:"completed"`
	AverageScore   float64   `json:"averageScore"`
	CompletionRate float64   `json:"completionRate"`
	Attempts       []Attempt `json:"attempts"`
}

type NewMission struct {
	Title       string     `json:"title" validate:"required,notblank,max=120"`
	Description string     `json:"description,omitempty"`
	SubjectID   string     `json:"subjectId" validate:"required"`
	ClassIDs    []string   `json:"classIds" validate:"required,min=1"`
	QuestionIDs []string   `json:"questionIds" validate:"required,min=1"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Duration    int        `json:"duration,omitempty" validate:"omitempty,min=1"`
	XPReward    int        `json:"xpReward,omitempty" validate:"omitempty,min=0"`
}

func (nm *NewMission) Validate(v *core.Validator) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return v.Struct(nm)
}

type UpdateMission struct {
	Title       string     `json:"title,omitempty" validate:"omitempty,max=120"`
	Description string     `json:"description,omitempty"`
	ClassIDs    []string   `json:"classIds,omitempty"`
	QuestionIDs []string   `json:"questionIds,omitempty"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=draft published closed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Duration    int        `json:"duration,omitempty" validate:"omitempty,min=1"`
	XPReward    int        `json:"xpReward,omitempty"`
}

func (um *UpdateMission) Validate(v *core.Validator) error {
	um.Title = core.CleanString(um.Title)
	um.Description = core.CleanString(um.Description)
	um.Status = core.CleanString(um.Status, true /* lower */)
	return v.Struct(um)
}
