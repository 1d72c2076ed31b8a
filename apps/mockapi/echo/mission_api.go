package echoapi

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/mission"
	"github.com/trezcool/gyaanbuddy/core/question"
	"github.com/trezcool/gyaanbuddy/core/student"
	"github.com/trezcool/gyaanbuddy/core/subject"
)

func (s *server) registerMissionAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	questions := &resource[question.Question]{
		many:          "questions",
		one:           "question",
		table:         s.db.questions,
		filterable:    []string{"subjectId", "type", "difficulty"},
		searchable:    []string{"text", "topic"},
		newPayload:    func() payload { return new(question.Draft) },
		updatePayload: func() payload { return new(question.Draft) },
		beforeSave:    numberOptions,
		afterChange:   s.recountQuestions,
		validator:     s.opts.Validator,
	}
	// before /missions/:id
	questions.register(g.Group("/missions/questions", jwt))

	missions := &resource[mission.Mission]{
		many:          "missions",
		one:           "mission",
		table:         s.db.missions,
		filterable:    []string{"subjectId", "classId:classIds", "status"},
		searchable:    []string{"title", "description"},
		newPayload:    func() payload { return new(mission.NewMission) },
		updatePayload: func() payload { return new(mission.UpdateMission) },
		beforeSave: func(m *mission.Mission) {
			m.TotalPoints = 0
			for _, qid := range m.QuestionIDs {
				if q, ok := s.db.questions.get(qid); ok {
					m.TotalPoints += q.Normalize().Points
				}
			}
		},
		validator: s.opts.Validator,
	}
	mg := g.Group("/missions", jwt)
	mg.POST("/:id/publish", s.publishMission)
	mg.GET("/:id/results", s.missionResults)
	missions.register(mg)
}

var optionIDs = "abcdefghij"

// numberOptions gives ids to the options of q that have none.
func numberOptions(q *question.Question) {
	for i := range q.Options {
		if q.Options[i].ID == "" && i < len(optionIDs) {
			q.Options[i].ID = optionIDs[i : i+1]
		}
	}
}

func (s *server) recountQuestions() {
	counts := make(map[string]int)
	for _, q := range s.db.questions.all() {
		counts[q.SubjectID]++
	}
	for _, sub := range s.db.subjects.all() {
		_, _, _ = s.db.subjects.update(sub.ID, func(sub *subject.Subject) error {
			sub.QuestionCount = counts[sub.ID]
			return nil
		})
	}
}

func (s *server) publishMission(ctx echo.Context) error {
	m, ok, err := s.db.missions.update(ctx.Param("id"), func(m *mission.Mission) error {
		if m.Status != mission.StatusDraft {
			return core.NewValidationError(errors.New("only draft missions can be published"))
		}
		if len(m.QuestionIDs) == 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "questionIds", Error: "a mission needs at least one question"})
		}
		m.Status = mission.StatusPublished
		return nil
	})
	if !ok {
		return notFound("mission")
	}
	if err != nil {
		return err
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"mission": m})
}

// missionResults scores each active student of the mission classes on their average score.
func (s *server) missionResults(ctx echo.Context) error {
	m, ok := s.db.missions.get(ctx.Param("id"))
	if !ok {
		return notFound("mission")
	}

	assigned := s.db.students.filter(func(st student.Student) bool {
		return st.Status == student.StatusActive && contains(m.ClassIDs, st.ClassID)
	})
	res := mission.Results{MissionID: m.ID, Assigned: len(assigned), Attempts: []mission.Attempt{}}
	if m.Status != mission.StatusDraft {
		var total float64
		for _, st := range assigned {
			if st.AvgScore <= 0 {
				continue
			}
			res.Attempts = append(res.Attempts, mission.Attempt{
				StudentID:   st.ID,
				StudentName: st.Name,
				Score:       st.AvgScore,
				XPEarned:    int(math.Round(float64(m.XPReward) * st.AvgScore / 100)),
			})
			total += st.AvgScore
		}
		res.Completed = len(res.Attempts)
		if res.Completed > 0 {
			res.AverageScore = round1(total / float64(res.Completed))
		}
		if res.Assigned > 0 {
			res.CompletionRate = round1(float64(res.Completed)/float64(res.Assigned)*100) / 100
		}
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"results": res})
}
