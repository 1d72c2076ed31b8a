package suggestion

import (
	"strings"
	"time"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/question"
)

// Suggestion types
const (
	TypeQuestions  = "questions"
	TypeLessonPlan = "lesson_plan"
	TypeActivity   = "activity"
)

// Suggestion statuses
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDismissed = "dismissed"
)

// Suggestion is AI-generated teaching content awaiting review.
type Suggestion struct {
	ID         string              `json:"id"`
	Type       string              `json:"type"`
	Prompt     string              `json:"prompt"`
	SubjectID  string              `json:"subjectId,omitempty"`
	Topic      string              `json:"topic,omitempty"`
	Difficulty string              `json:"difficulty,omitempty"`
	Content    string              `json:"content,omitempty"`
	Questions  []question.Question `json:"questions"`
	Status     string              `json:"status"`
	CreatedAt  *time.Time          `json:"createdAt,omitempty"`
}

func (s Suggestion) EntityID() string { return s.ID }

func (s Suggestion) Normalize() Suggestion {
	s.Status = strings.ToLower(s.Status)
	if s.Status == "" {
		s.Status = StatusPending
	}
	if s.Type == "" {
		s.Type = TypeQuestions
	}
	if s.Questions == nil {
		s.Questions = []question.Question{}
	}
	for i, q := range s.Questions {
		s.Questions[i] = q.Normalize()
	}
	return s
}

// Request asks the assistant for new content.
type Request struct {
	Type       string `json:"type" validate:"required,oneof=questions lesson_plan activity"`
	Prompt     string `json:"prompt" validate:"required,notblank,max=1000"`
	SubjectID  string `json:"subjectId,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	Count      int    `json:"count,omitempty" validate:"omitempty,min=1,max=20"`
}

func (r *Request) Validate(v *core.Validator) error {
	r.Type = core.CleanString(r.Type, true /* lower */)
	if r.Type == "" {
		r.Type = TypeQuestions
	}
	r.Prompt = core.CleanString(r.Prompt)
	r.Topic = core.CleanString(r.Topic)
	r.Difficulty = core.CleanString(r.Difficulty, true)
	return v.Struct(r)
}
