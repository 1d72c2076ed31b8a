package echoapi

import (
	"encoding/csv"
	"io"
	"math"
	"net/http"
	"net/mail"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/class"
	"github.com/trezcool/gyaanbuddy/core/mission"
	"github.com/trezcool/gyaanbuddy/core/report"
	"github.com/trezcool/gyaanbuddy/core/student"
	"github.com/trezcool/gyaanbuddy/core/subject"
	"github.com/trezcool/gyaanbuddy/core/teacher"
)

var now = time.Now // mockable

// Teachers

func (s *server) registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	res := &resource[teacher.Teacher]{
		many:          "teachers",
		one:           "teacher",
		table:         s.db.teachers,
		filterable:    []string{"status", "subject:subjects"},
		searchable:    []string{"name", "email"},
		newPayload:    func() payload { return new(teacher.NewTeacher) },
		updatePayload: func() payload { return new(teacher.UpdateTeacher) },
		beforeSave: func(t *teacher.Teacher) {
			if t.JoinedAt == "" {
				t.JoinedAt = now().Format("2006-01-02")
			}
		},
		check:       unique(s.db.teachers, "email", func(t teacher.Teacher) string { return t.Email }),
		afterCreate: s.sendInvitation,
		validator:   s.opts.Validator,
	}

	tg := g.Group("/users/teachers", jwt, roleMiddleware(auth.RolePrincipal))
	tg.GET("/stats", s.teacherStats)
	res.register(tg)

	g.GET("/users/leaderboard", s.leaderboard, jwt)
}

func (s *server) sendInvitation(t teacher.Teacher) {
	s.opts.Mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      "You're invited",
		TemplateName: "invitation",
		TemplateData: map[string]string{"Name": t.Name, "Email": t.Email},
	})
}

func (s *server) teacherStats(ctx echo.Context) error {
	var stats teacher.Stats
	var usage float64
	month := now().Format("2006-01")
	for _, t := range s.db.teachers.all() {
		stats.TotalTeachers++
		if t.Status == teacher.StatusActive {
			stats.ActiveTeachers++
		} else {
			stats.InactiveTeachers++
		}
		if strings.HasPrefix(t.JoinedAt, month) {
			stats.NewThisMonth++
		}
		usage += t.DashboardUsage
	}
	if stats.TotalTeachers > 0 {
		stats.AvgDashboardUsage = round1(usage / float64(stats.TotalTeachers))
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"stats": stats})
}

var badges = []string{"gold", "silver", "bronze"}

func (s *server) leaderboard(ctx echo.Context) error {
	teachers := s.db.teachers.filter(func(t teacher.Teacher) bool { return t.Status == teacher.StatusActive })
	sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].DashboardUsage > teachers[j].DashboardUsage })

	board := make([]teacher.LeaderboardEntry, 0, len(teachers))
	for i, t := range teachers {
		entry := teacher.LeaderboardEntry{
			Rank:      i + 1,
			TeacherID: t.ID,
			Name:      t.Name,
			Score:     t.DashboardUsage,
			Missions:  len(s.db.missions.filter(func(m mission.Mission) bool { return contains(t.Subjects, m.SubjectID) })),
		}
		for _, c := range s.db.classes.filter(func(c class.Class) bool { return c.TeacherID == t.ID }) {
			entry.Students += c.StudentCount
		}
		if i < len(badges) {
			entry.Badge = badges[i]
		}
		board = append(board, entry)
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"leaderboard": board, "period": ctx.QueryParam("period")})
}

// Students

func (s *server) registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	res := &resource[student.Student]{
		many:          "students",
		one:           "student",
		table:         s.db.students,
		filterable:    []string{"classId", "grade", "status"},
		searchable:    []string{"name", "rollNumber", "email"},
		newPayload:    func() payload { return new(student.NewStudent) },
		updatePayload: func() payload { return new(student.UpdateStudent) },
		beforeSave:    s.placeStudent,
		check:         unique(s.db.students, "rollNumber", func(st student.Student) string { return st.RollNumber }),
		afterChange:   s.recountClasses,
		validator:     s.opts.Validator,
	}

	sg := g.Group("/students", jwt)
	sg.POST("/import", s.importStudents)
	sg.GET("/:id/performance", s.studentPerformance)
	res.register(sg)
}

// placeStudent copies the class details onto st.
func (s *server) placeStudent(st *student.Student) {
	if c, ok := s.db.classes.get(st.ClassID); ok {
		st.ClassName = c.DisplayName()
		st.Grade = c.Grade
		st.Section = c.Section
	}
}

func (s *server) recountClasses() {
	counts := make(map[string]int)
	for _, st := range s.db.students.all() {
		counts[st.ClassID]++
	}
	for _, c := range s.db.classes.all() {
		_, _, _ = s.db.classes.update(c.ID, func(c *class.Class) error {
			c.StudentCount = counts[c.ID]
			return nil
		})
	}
}

var importColumns = []string{"name", "rollNumber", "grade", "section", "email", "parentName", "parentPhone"}

func (s *server) importStudents(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a CSV file is required"})
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "only .csv files can be imported"})
	}
	classID := ctx.FormValue("classId")
	if classID != "" {
		if _, ok := s.db.classes.get(classID); !ok {
			return notFound("class")
		}
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	result, err := s.importCSV(csv.NewReader(f), classID)
	if err != nil {
		return err
	}
	s.recountClasses()
	return s.ok(ctx, http.StatusOK, result)
}

func (s *server) importCSV(r *csv.Reader, classID string) (student.ImportResult, error) {
	result := student.ImportResult{Errors: []student.ImportRowError{}}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return result, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "the file is empty"})
	}
	if err != nil {
		return result, core.NewValidationError(errors.Wrap(err, "reading CSV header"))
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range importColumns[:3] {
		if _, ok := cols[required]; !ok {
			return result, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "missing column " + required})
		}
	}

	checkRoll := unique(s.db.students, "rollNumber", func(st student.Student) string { return st.RollNumber })
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, student.ImportRowError{Row: line, Message: err.Error()})
			continue
		}

		get := func(col string) string {
			if i, ok := cols[col]; ok && i < len(rec) {
				return rec[i]
			}
			return ""
		}
		ns := student.NewStudent{
			Name:        get("name"),
			RollNumber:  get("rollNumber"),
			Grade:       get("grade"),
			Section:     get("section"),
			Email:       get("email"),
			ParentName:  get("parentName"),
			ParentPhone: get("parentPhone"),
			ClassID:     classID,
		}
		if err := ns.Validate(s.opts.Validator); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, student.ImportRowError{Row: line, Message: err.Error()})
			continue
		}

		st, err := assign(student.Student{ID: newID()}, ns)
		if err == nil {
			s.placeStudent(&st)
			st = st.Normalize()
			err = checkRoll(st)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, student.ImportRowError{Row: line, Message: err.Error()})
			continue
		}
		s.db.students.insert(st.ID, st)
		result.Imported++
	}
	return result, nil
}

func (s *server) studentPerformance(ctx echo.Context) error {
	st, ok := s.db.students.get(ctx.Param("id"))
	if !ok {
		return notFound("student")
	}

	perf := student.Performance{
		StudentID:         st.ID,
		AverageScore:      st.AvgScore,
		Accuracy:          round1(st.AvgScore) / 100,
		MissionsCompleted: st.XP / 100,
		Subjects:          []student.SubjectScore{},
		Trend:             []student.TrendPoint{},
	}
	for _, sa := range s.subjectAverages(st.AvgScore, st.ClassID) {
		perf.Subjects = append(perf.Subjects, student.SubjectScore{Subject: sa.Subject, Score: sa.Average})
	}
	today := now()
	for week := 3; week >= 0; week-- {
		perf.Trend = append(perf.Trend, student.TrendPoint{
			Date:  today.AddDate(0, 0, -7*week).Format("2006-01-02"),
			Score: clampScore(st.AvgScore - float64(2*week)),
		})
	}
	return s.ok(ctx, http.StatusOK, echo.Map{"performance": perf})
}

// Classes

func (s *server) registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	res := &resource[class.Class]{
		many:          "classes",
		one:           "class",
		table:         s.db.classes,
		filterable:    []string{"grade", "teacherId"},
		searchable:    []string{"name", "grade", "section", "teacherName"},
		newPayload:    func() payload { return new(class.NewClass) },
		updatePayload: func() payload { return new(class.UpdateClass) },
		beforeSave: func(c *class.Class) {
			if t, ok := s.db.teachers.get(c.TeacherID); ok {
				c.TeacherName = t.Name
			}
		},
		validator: s.opts.Validator,
	}

	cg := g.Group("/classes", jwt)
	cg.GET("/:id/students", s.classRoster)
	cg.POST("/:id/students", s.assignStudents)
	res.register(cg)
}

func (s *server) classRoster(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, ok := s.db.classes.get(id); !ok {
		return notFound("class")
	}
	roster := s.db.students.filter(func(st student.Student) bool { return st.ClassID == id })
	return s.ok(ctx, http.StatusOK, echo.Map{"students": roster})
}

func (s *server) assignStudents(ctx echo.Context) error {
	id := ctx.Param("id")
	c, ok := s.db.classes.get(id)
	if !ok {
		return notFound("class")
	}
	var data class.Assignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Assignment")
	}
	if err := s.opts.Validator.Struct(data); err != nil {
		return err
	}
	for _, sid := range data.StudentIDs {
		if _, ok := s.db.students.get(sid); !ok {
			return core.NewValidationError(nil, core.FieldError{Field: "studentIds", Error: "unknown student " + sid})
		}
	}

	for _, sid := range data.StudentIDs {
		_, _, _ = s.db.students.update(sid, func(st *student.Student) error {
			st.ClassID = c.ID
			s.placeStudent(st)
			return nil
		})
	}
	s.recountClasses()
	c, _ = s.db.classes.get(id)
	return s.ok(ctx, http.StatusOK, echo.Map{"class": c})
}

// Subjects

func (s *server) registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	res := &resource[subject.Subject]{
		many:          "subjects",
		one:           "subject",
		table:         s.db.subjects,
		filterable:    []string{"grade"},
		searchable:    []string{"name", "code"},
		newPayload:    func() payload { return new(subject.NewSubject) },
		updatePayload: func() payload { return new(subject.UpdateSubject) },
		check:         unique(s.db.subjects, "code", func(sub subject.Subject) string { return sub.Code }),
		validator:     s.opts.Validator,
	}
	res.register(g.Group("/subjects", jwt))
}

// subjectAverages spreads avg over the subjects of class classID.
func (s *server) subjectAverages(avg float64, classID string) []report.SubjectAverage {
	c, ok := s.db.classes.get(classID)
	if !ok {
		return []report.SubjectAverage{}
	}
	res := make([]report.SubjectAverage, 0, len(c.SubjectIDs))
	for i, sid := range c.SubjectIDs {
		name := sid
		if sub, ok := s.db.subjects.get(sid); ok {
			name = sub.Name
		}
		// alternate above and below the overall average
		offset := float64(3 * (i + 1))
		if i%2 == 1 {
			offset = -offset
		}
		res = append(res, report.SubjectAverage{Subject: name, Average: clampScore(avg + offset)})
	}
	return res
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func clampScore(f float64) float64 {
	return round1(math.Max(0, math.Min(100, f)))
}

func contains(list []string, v string) bool {
	for _, el := range list {
		if el == v {
			return true
		}
	}
	return false
}
