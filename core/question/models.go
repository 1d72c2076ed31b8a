package question

import (
	"strings"

	"github.com/trezcool/gyaanbuddy/core"
)

// Question types
const (
	TypeMCQ         = "mcq"
	TypeTrueFalse   = "true_false"
	TypeShortAnswer = "short_answer"
)

// Difficulties
const (
	Easy   = "easy"
	Medium = "medium"
	Hard   = "hard"
)

type Option struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text" validate:"required,notblank"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Type        string   `json:"type"`
	Options     []Option `json:"options"`
	Answer      string   `json:"answer,omitempty"`
	SubjectID   string   `json:"subjectId"`
	Topic       string   `json:"topic,omitempty"`
	Difficulty  string   `json:"difficulty"`
	Points      int      `json:"points"`
	Explanation string   `json:"explanation,omitempty"`
	Tags        []string `json:"tags"`
}

func (q Question) EntityID() string { return q.ID }

func (q Question) Normalize() Question {
	q.Type = strings.ToLower(q.Type)
	if q.Type == "" {
		q.Type = TypeMCQ
	}
	if q.Difficulty == "" {
		q.Difficulty = Medium
	}
	if q.Points == 0 {
		q.Points = 1
	}
	if q.Options == nil {
		q.Options = []Option{}
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	return q
}

// CorrectOption returns the correct option of an mcq.
func (q Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return Option{}, false
}

// Draft is the payload of a question create or update.
type Draft struct {
	Text        string   `json:"text" validate:"required,notblank"`
	Type        string   `json:"type" validate:"required,oneof=mcq true_false short_answer"`
	Options     []Option `json:"options,omitempty" validate:"dive"`
	Answer      string   `json:"answer,omitempty"`
	SubjectID   string   `json:"subjectId" validate:"required"`
	Topic       string   `json:"topic,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	Points      int      `json:"points,omitempty" validate:"omitempty,min=1,max=100"`
	Explanation string   `json:"explanation,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (d *Draft) Validate(v *core.Validator) error {
	d.Text = core.CleanString(d.Text)
	d.Type = core.CleanString(d.Type, true /* lower */)
	d.Difficulty = core.CleanString(d.Difficulty, true)
	d.Answer = core.CleanString(d.Answer)
	if err := v.Struct(d); err != nil {
		return err
	}
	return d.validateAnswer()
}

// validateAnswer checks the answer key against the question type.
func (d *Draft) validateAnswer() error {
	switch d.Type {
	case TypeMCQ:
		if len(d.Options) < 2 {
			return core.NewValidationError(nil, core.FieldError{Field: "options", Error: "a multiple choice question needs at least 2 options"})
		}
		var correct int
		for _, o := range d.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return core.NewValidationError(nil, core.FieldError{Field: "options", Error: "exactly one option must be correct"})
		}
	case TypeTrueFalse:
		d.Answer = strings.ToLower(d.Answer)
		if d.Answer != "true" && d.Answer != "false" {
			return core.NewValidationError(nil, core.FieldError{Field: "answer", Error: "answer must be true or false"})
		}
		d.Options = nil
	case TypeShortAnswer:
		if d.Answer == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "answer", Error: "this field is required"})
		}
		d.Options = nil
	}
	return nil
}
