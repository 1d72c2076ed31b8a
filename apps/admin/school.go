package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/class"
	"github.com/trezcool/gyaanbuddy/core/student"
	"github.com/trezcool/gyaanbuddy/core/subject"
	"github.com/trezcool/gyaanbuddy/core/teacher"
)

// Teachers

func (cli *commandLine) teachersCmd() *cobra.Command {
	svc := func() *teacher.Service { return cli.app.Teachers }

	var search, status, subj string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the teachers",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageTeachers, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{"search": search, "status": status, "subject": subj})
			if err := wait(svc().FetchTeachers(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, t := range svc().Slice().Items() {
				rows = append(rows, []string{t.ID, t.Name, t.Email, t.Status, ftoa(t.DashboardUsage) + "%"})
			}
			if err := cli.table([]string{"ID", "NAME", "EMAIL", "STATUS", "USAGE"}, rows); err != nil {
				return err
			}
			cli.pagination(svc().Slice().Pagination())
			return nil
		}),
	}
	list.Flags().StringVarP(&search, "search", "s", "", "name or email contains")
	list.Flags().StringVar(&status, "status", "", "active|inactive")
	list.Flags().StringVar(&subj, "subject", "", "teaches the subject id")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a teacher",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageTeachers, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchTeacher(cmd.Context(), args[0])); err != nil {
				return err
			}
			t, _ := svc().Slice().Current()
			return cli.record(
				"ID", t.ID, "Name", t.Name, "Email", t.Email, "Phone", orDash(t.Phone),
				"Subjects", strings.Join(t.Subjects, ", "), "Classes", strings.Join(t.Classes, ", "),
				"Status", t.Status, "Joined", orDash(t.JoinedAt),
			)
		}),
	}

	var nt teacher.NewTeacher
	invite := &cobra.Command{
		Use:   "invite",
		Short: "Add a teacher",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageTeachers, func(cmd *cobra.Command, _ []string) error {
			if err := wait(svc().CreateTeacher(cmd.Context(), nt)); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Invited %s.\n", nt.Email)
			return nil
		}),
	}
	invite.Flags().StringVar(&nt.Name, "name", "", "full name")
	invite.Flags().StringVar(&nt.Email, "email", "", "email address")
	invite.Flags().StringVar(&nt.Phone, "phone", "", "phone number, E.164")
	invite.Flags().StringSliceVar(&nt.Subjects, "subjects", nil, "subject ids")

	del := &cobra.Command{Use: "delete ID", Short: "Remove a teacher", Args: cobra.ExactArgs(1)}
	yes := confirmFlag(del)
	del.RunE = cli.guarded(auth.PageTeachers, func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNoConfirm
		}
		if err := wait(svc().DeleteTeacher(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Teacher %s deleted.\n", args[0])
		return nil
	})

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show staff statistics",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageTeachers, func(cmd *cobra.Command, _ []string) error {
			if err := wait(svc().FetchStats(cmd.Context())); err != nil {
				return err
			}
			s := svc().Slice().Extra().Stats
			return cli.record(
				"Teachers", itoa(s.TotalTeachers), "Active", itoa(s.ActiveTeachers), "Inactive", itoa(s.InactiveTeachers),
				"New this month", itoa(s.NewThisMonth), "Average dashboard usage", ftoa(s.AvgDashboardUsage)+"%",
			)
		}),
	}

	return group("teachers", "Manage the teaching staff", list, get, invite, del, stats)
}

func (cli *commandLine) leaderboardCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank the teachers by engagement",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageLeaderboard, func(cmd *cobra.Command, _ []string) error {
			if err := wait(cli.app.Teachers.FetchLeaderboard(cmd.Context(), period)); err != nil {
				return err
			}
			var rows [][]string
			for _, e := range cli.app.Teachers.Slice().Extra().Leaderboard {
				rows = append(rows, []string{itoa(e.Rank), e.Name, ftoa(e.Score), itoa(e.Missions), itoa(e.Students), orDash(e.Badge)})
			}
			return cli.table([]string{"RANK", "TEACHER", "SCORE", "MISSIONS", "STUDENTS", "BADGE"}, rows)
		}),
	}
	cmd.Flags().StringVarP(&period, "period", "p", "month", "week|month|term|year")
	return cmd
}

// Students

func (cli *commandLine) studentsCmd() *cobra.Command {
	svc := func() *student.Service { return cli.app.Students }

	var filters struct{ search, classID, grade, status, page, limit string }
	list := &cobra.Command{
		Use:   "list",
		Short: "List the students",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageStudents, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{
				"search":  filters.search,
				"classId": filters.classID,
				"grade":   filters.grade,
				"status":  filters.status,
				"page":    filters.page,
				"limit":   filters.limit,
			})
			if err := wait(svc().FetchStudents(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, st := range svc().Slice().Items() {
				rows = append(rows, []string{st.ID, st.Name, st.RollNumber, orDash(st.ClassName), st.Status, itoa(st.XP)})
			}
			if err := cli.table([]string{"ID", "NAME", "ROLL", "CLASS", "STATUS", "XP"}, rows); err != nil {
				return err
			}
			cli.pagination(svc().Slice().Pagination())
			return nil
		}),
	}
	list.Flags().StringVarP(&filters.search, "search", "s", "", "name or roll number contains")
	list.Flags().StringVar(&filters.classID, "class", "", "class id")
	list.Flags().StringVar(&filters.grade, "grade", "", "grade")
	list.Flags().StringVar(&filters.status, "status", "", "active|inactive")
	list.Flags().StringVar(&filters.page, "page", "1", "page number")
	list.Flags().StringVar(&filters.limit, "limit", "20", "students per page")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a student",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageStudents, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchStudent(cmd.Context(), args[0])); err != nil {
				return err
			}
			st, _ := svc().Slice().Current()
			return cli.record(
				"ID", st.ID, "Name", st.Name, "Roll number", st.RollNumber, "Class", orDash(st.ClassName),
				"Parent", orDash(st.ParentName), "Status", st.Status, "XP", itoa(st.XP), "Level", itoa(st.Level),
				"Streak", itoa(st.Streak), "Average score", ftoa(st.AvgScore),
			)
		}),
	}

	del := &cobra.Command{Use: "delete ID", Short: "Remove a student", Args: cobra.ExactArgs(1)}
	yes := confirmFlag(del)
	del.RunE = cli.guarded(auth.PageStudents, func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNoConfirm
		}
		if err := wait(svc().DeleteStudent(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Student %s deleted.\n", args[0])
		return nil
	})

	var classID string
	imp := &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Import students from a CSV file (name,rollNumber,grade,...)",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageStudents, func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening CSV")
			}
			defer f.Close()

			if err = wait(svc().ImportStudents(cmd.Context(), args[0], f, classID)); err != nil {
				return err
			}
			res := svc().Slice().Extra().ImportResult
			if res == nil {
				fmt.Fprintln(cli.out, "Import submitted.")
				return nil
			}
			fmt.Fprintf(cli.out, "Imported %d, failed %d.\n", res.Imported, res.Failed)
			if len(res.Errors) == 0 {
				return nil
			}
			var rows [][]string
			for _, re := range res.Errors {
				rows = append(rows, []string{itoa(re.Row), re.Message})
			}
			return cli.table([]string{"ROW", "ERROR"}, rows)
		}),
	}
	imp.Flags().StringVar(&classID, "class", "", "place the students in this class")

	perf := &cobra.Command{
		Use:   "performance ID",
		Short: "Show the performance of a student",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageStudents, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchPerformance(cmd.Context(), args[0])); err != nil {
				return err
			}
			p, _ := svc().Performance(args[0])
			if err := cli.record(
				"Average score", ftoa(p.AverageScore), "Accuracy", percent(p.Accuracy),
				"Missions completed", itoa(p.MissionsCompleted),
			); err != nil {
				return err
			}
			var rows [][]string
			for _, s := range p.Subjects {
				rows = append(rows, []string{s.Subject, ftoa(s.Score)})
			}
			return cli.table([]string{"SUBJECT", "SCORE"}, rows)
		}),
	}

	return group("students", "Manage the students", list, get, del, imp, perf)
}

// Classes

func (cli *commandLine) classesCmd() *cobra.Command {
	svc := func() *class.Service { return cli.app.Classes }

	var search, grade, teacherID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the classes",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageClasses, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{"search": search, "grade": grade, "teacherId": teacherID})
			if err := wait(svc().FetchClasses(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, c := range svc().Slice().Items() {
				rows = append(rows, []string{c.ID, c.DisplayName(), orDash(c.TeacherName), itoa(c.StudentCount), orDash(c.Room)})
			}
			return cli.table([]string{"ID", "CLASS", "TEACHER", "STUDENTS", "ROOM"}, rows)
		}),
	}
	list.Flags().StringVarP(&search, "search", "s", "", "name contains")
	list.Flags().StringVar(&grade, "grade", "", "grade")
	list.Flags().StringVar(&teacherID, "teacher", "", "class teacher id")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a class",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageClasses, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchClass(cmd.Context(), args[0])); err != nil {
				return err
			}
			c, _ := svc().Slice().Current()
			return cli.record(
				"ID", c.ID, "Class", c.DisplayName(), "Teacher", orDash(c.TeacherName),
				"Subjects", strings.Join(c.SubjectIDs, ", "), "Students", itoa(c.StudentCount),
				"Room", orDash(c.Room), "Academic year", orDash(c.AcademicYear),
			)
		}),
	}

	del := &cobra.Command{Use: "delete ID", Short: "Remove a class", Args: cobra.ExactArgs(1)}
	yes := confirmFlag(del)
	del.RunE = cli.guarded(auth.PageClasses, func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNoConfirm
		}
		if err := wait(svc().DeleteClass(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Class %s deleted.\n", args[0])
		return nil
	})

	roster := &cobra.Command{
		Use:   "roster ID",
		Short: "List the students of a class",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageClasses, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchRoster(cmd.Context(), args[0])); err != nil {
				return err
			}
			return cli.students(svc().Slice().Extra().Roster)
		}),
	}

	assign := &cobra.Command{
		Use:   "assign ID STUDENT_ID...",
		Short: "Move students into a class",
		Args:  cobra.MinimumNArgs(2),
		RunE: cli.guarded(auth.PageClasses, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().AssignStudents(cmd.Context(), args[0], args[1:])); err != nil {
				return err
			}
			return cli.students(svc().Slice().Extra().Roster)
		}),
	}

	return group("classes", "Manage the classes", list, get, del, roster, assign)
}

func (cli *commandLine) students(list []student.Student) error {
	var rows [][]string
	for _, st := range list {
		rows = append(rows, []string{st.ID, st.Name, st.RollNumber, st.Status})
	}
	return cli.table([]string{"ID", "NAME", "ROLL", "STATUS"}, rows)
}

// Subjects

func (cli *commandLine) subjectsCmd() *cobra.Command {
	svc := func() *subject.Service { return cli.app.Subjects }

	var search, grade string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the subjects",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageSubjects, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{"search": search, "grade": grade})
			if err := wait(svc().FetchSubjects(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, s := range svc().Slice().Items() {
				rows = append(rows, []string{s.ID, s.Code, s.Name, orDash(s.Grade), itoa(s.QuestionCount)})
			}
			return cli.table([]string{"ID", "CODE", "NAME", "GRADE", "QUESTIONS"}, rows)
		}),
	}
	list.Flags().StringVarP(&search, "search", "s", "", "name or code contains")
	list.Flags().StringVar(&grade, "grade", "", "grade")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a subject",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageSubjects, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchSubject(cmd.Context(), args[0])); err != nil {
				return err
			}
			s, _ := svc().Slice().Current()
			return cli.record(
				"ID", s.ID, "Code", s.Code, "Name", s.Name, "Grade", orDash(s.Grade),
				"Teachers", strings.Join(s.TeacherIDs, ", "), "Questions", itoa(s.QuestionCount),
			)
		}),
	}

	del := &cobra.Command{Use: "delete ID", Short: "Remove a subject", Args: cobra.ExactArgs(1)}
	yes := confirmFlag(del)
	del.RunE = cli.guarded(auth.PageSubjects, func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNoConfirm
		}
		if err := wait(svc().DeleteSubject(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Subject %s deleted.\n", args[0])
		return nil
	})

	return group("subjects", "Manage the subjects", list, get, del)
}
