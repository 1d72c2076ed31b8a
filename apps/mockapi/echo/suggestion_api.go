package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/question"
	"github.com/trezcool/gyaanbuddy/core/suggestion"
)

const defaultSuggestedQuestions = 3

func (s *server) registerSuggestionAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	suggestions := &resource[suggestion.Suggestion]{
		many:       "suggestions",
		one:        "suggestion",
		table:      s.db.suggestions,
		filterable: []string{"status", "type", "subjectId"},
		searchable: []string{"prompt", "topic"},
		validator:  s.opts.Validator,
	}

	ag := g.Group("/ai/suggestions", jwt, roleMiddleware(auth.RoleTeacher))
	ag.GET("", suggestions.query)
	ag.POST("", s.requestSuggestion)
	ag.POST("/:id/accept", s.acceptSuggestion)
	ag.DELETE("/:id", suggestions.destroy)
}

func (s *server) requestSuggestion(ctx echo.Context) error {
	var data suggestion.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to suggestion Request")
	}
	if err := data.Validate(s.opts.Validator); err != nil {
		return err
	}

	createdAt := now().UTC()
	sg := suggestion.Suggestion{
		ID:         newID(),
		Type:       data.Type,
		Prompt:     data.Prompt,
		SubjectID:  data.SubjectID,
		Topic:      data.Topic,
		Difficulty: data.Difficulty,
		Status:     suggestion.StatusPending,
		CreatedAt:  &createdAt,
	}
	if sg.Type == suggestion.TypeQuestions {
		sg.Questions = draftQuestions(data)
	} else {
		sg.Content = draftContent(data)
	}
	sg = s.db.suggestions.insert(sg.ID, sg.Normalize())
	return s.ok(ctx, http.StatusCreated, echo.Map{"suggestion": sg})
}

// draftQuestions makes canned multiple choice questions about the request topic.
func draftQuestions(req suggestion.Request) []question.Question {
	n := req.Count
	if n == 0 {
		n = defaultSuggestedQuestions
	}
	topic := req.Topic
	if topic == "" {
		topic = req.Prompt
	}

	qs := make([]question.Question, 0, n)
	for i := 0; i < n; i++ {
		q := question.Question{
			ID:         newID(),
			Text:       fmt.Sprintf("%s: practice question %d", topic, i+1),
			Type:       question.TypeMCQ,
			SubjectID:  req.SubjectID,
			Topic:      req.Topic,
			Difficulty: req.Difficulty,
		}
		for j := 0; j < 4; j++ {
			q.Options = append(q.Options, question.Option{
				ID:        optionIDs[j : j+1],
				Text:      fmt.Sprintf("Option %s", strings.ToUpper(optionIDs[j:j+1])),
				IsCorrect: j == i%4,
			})
		}
		qs = append(qs, q.Normalize())
	}
	return qs
}

func draftContent(req suggestion.Request) string {
	topic := req.Topic
	if topic == "" {
		topic = req.Prompt
	}
	if req.Type == suggestion.TypeActivity {
		return fmt.Sprintf("Group activity on %s\n1. Split the class in teams of four\n2. Each team prepares three questions\n3. Teams quiz each other", topic)
	}
	return fmt.Sprintf("Lesson plan: %s\n1. Warm-up discussion (5 min)\n2. Guided explanation (15 min)\n3. Practice in pairs (15 min)\n4. Exit quiz (5 min)", topic)
}

// acceptSuggestion marks the suggestion accepted and adds its questions to the question bank.
func (s *server) acceptSuggestion(ctx echo.Context) error {
	sg, ok, err := s.db.suggestions.update(ctx.Param("id"), func(sg *suggestion.Suggestion) error {
		if sg.Status == suggestion.StatusAccepted {
			return core.NewValidationError(errors.New("suggestion already accepted"))
		}
		sg.Status = suggestion.StatusAccepted
		return nil
	})
	if !ok {
		return notFound("suggestion")
	}
	if err != nil {
		return err
	}

	for _, q := range sg.Questions {
		if _, exists := s.db.questions.get(q.ID); !exists {
			s.db.questions.insert(q.ID, q)
		}
	}
	if len(sg.Questions) > 0 {
		s.recountQuestions()
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"suggestion": sg, "addedQuestions": len(sg.Questions)})
}
