package echoapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core/mission"
	"github.com/trezcool/gyaanbuddy/core/report"
	"github.com/trezcool/gyaanbuddy/core/student"
)

func (s *server) registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	reports := &resource[report.Report]{
		many:       "reports",
		one:        "report",
		table:      s.db.reports,
		filterable: []string{"type", "period"},
		searchable: []string{"title"},
		validator:  s.opts.Validator,
	}

	rg := g.Group("/reports", jwt)
	rg.GET("", reports.query)
	rg.POST("/generate", s.generateReport)
	rg.GET("/overview", s.reportOverview)
	rg.GET("/classes/:id", s.classReport)
	rg.GET("/students/:id", s.studentReport)
}

func (s *server) generateReport(ctx echo.Context) error {
	var data report.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to report Request")
	}
	if err := data.Validate(s.opts.Validator); err != nil {
		return err
	}

	title := strings.Title(data.Period) + "ly school overview"
	switch data.Type {
	case report.TypeClass:
		c, ok := s.db.classes.get(data.TargetID)
		if !ok {
			return notFound("class")
		}
		title = c.DisplayName() + " " + data.Period + " report"
	case report.TypeStudent:
		st, ok := s.db.students.get(data.TargetID)
		if !ok {
			return notFound("student")
		}
		title = st.Name + " " + data.Period + " report"
	case report.TypeTeacher:
		t, ok := s.db.teachers.get(data.TargetID)
		if !ok {
			return notFound("teacher")
		}
		title = t.Name + " " + data.Period + " report"
	}
	format := data.Format
	if format == "" {
		format = "pdf"
	}

	generatedAt := now().UTC()
	r := report.Report{
		ID:          newID(),
		Title:       title,
		Type:        data.Type,
		TargetID:    data.TargetID,
		Period:      data.Period,
		GeneratedAt: &generatedAt,
		Status:      report.StatusReady,
	}
	r.URL = "/reports/" + r.ID + "." + format
	s.db.reports.insert(r.ID, r)
	return s.ok(ctx, http.StatusCreated, echo.Map{"report": r})
}

func (s *server) reportOverview(ctx echo.Context) error {
	ov := s.db.overview
	students := s.db.students.all()
	ov.TotalStudents = len(students)
	ov.TotalTeachers = s.db.teachers.count()
	ov.TotalClasses = s.db.classes.count()
	ov.ActiveMissions = len(s.db.missions.filter(func(m mission.Mission) bool { return m.Status == mission.StatusPublished }))
	ov.AverageScore = averageScore(students)
	return s.ok(ctx, http.StatusOK, echo.Map{"overview": ov, "period": ctx.QueryParam("period")})
}

func (s *server) classReport(ctx echo.Context) error {
	c, ok := s.db.classes.get(ctx.Param("id"))
	if !ok {
		return notFound("class")
	}
	roster := s.db.students.filter(func(st student.Student) bool { return st.ClassID == c.ID })
	avg := averageScore(roster)

	cr := report.ClassReport{
		ClassID:      c.ID,
		ClassName:    c.DisplayName(),
		AverageScore: avg,
		Subjects:     s.subjectAverages(avg, c.ID),
		TopStudents:  topStudents(roster, 3),
	}
	if len(roster) > 0 {
		active := 0
		for _, st := range roster {
			if st.Status == student.StatusActive {
				active++
			}
		}
		cr.CompletionRate = round1(float64(active)/float64(len(roster))*100) / 100
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"report": cr})
}

func (s *server) studentReport(ctx echo.Context) error {
	st, ok := s.db.students.get(ctx.Param("id"))
	if !ok {
		return notFound("student")
	}

	sr := report.StudentReport{
		StudentID:         st.ID,
		Name:              st.Name,
		AverageScore:      st.AvgScore,
		XP:                st.XP,
		MissionsCompleted: st.XP / 100,
		Subjects:          s.subjectAverages(st.AvgScore, st.ClassID),
		Strengths:         []string{},
		Weaknesses:        []string{},
	}
	for _, sa := range sr.Subjects {
		if sa.Average >= st.AvgScore {
			sr.Strengths = append(sr.Strengths, sa.Subject)
		} else {
			sr.Weaknesses = append(sr.Weaknesses, sa.Subject)
		}
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"report": sr})
}

func averageScore(students []student.Student) float64 {
	if len(students) == 0 {
		return 0
	}
	var total float64
	for _, st := range students {
		total += st.AvgScore
	}
	return round1(total / float64(len(students)))
}

func topStudents(students []student.Student, n int) []report.StudentRank {
	sorted := append([]student.Student(nil), students...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AvgScore > sorted[j].AvgScore })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	top := make([]report.StudentRank, 0, len(sorted))
	for _, st := range sorted {
		top = append(top, report.StudentRank{StudentID: st.ID, Name: st.Name, Score: st.AvgScore})
	}
	return top
}
