package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/mission"
	"github.com/trezcool/gyaanbuddy/core/question"
	"github.com/trezcool/gyaanbuddy/core/report"
	"github.com/trezcool/gyaanbuddy/core/suggestion"
)

// Questions

func (cli *commandLine) questionsCmd() *cobra.Command {
	svc := func() *question.Service { return cli.app.Questions }

	var search, subjectID, typ, difficulty string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the question bank",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageQuestions, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{
				"search":     search,
				"subjectId":  subjectID,
				"type":       typ,
				"difficulty": difficulty,
			})
			if err := wait(svc().FetchQuestions(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, q := range svc().Slice().Items() {
				rows = append(rows, []string{q.ID, q.Type, q.Difficulty, itoa(q.Points), q.Text})
			}
			return cli.table([]string{"ID", "TYPE", "DIFFICULTY", "POINTS", "TEXT"}, rows)
		}),
	}
	list.Flags().StringVarP(&search, "search", "s", "", "text contains")
	list.Flags().StringVar(&subjectID, "subject", "", "subject id")
	list.Flags().StringVar(&typ, "type", "", "mcq|true_false|short_answer")
	list.Flags().StringVar(&difficulty, "difficulty", "", "easy|medium|hard")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a question",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageQuestions, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchQuestion(cmd.Context(), args[0])); err != nil {
				return err
			}
			q, _ := svc().Slice().Current()
			answer := q.Answer
			if opt, ok := q.CorrectOption(); ok {
				answer = opt.Text
			}
			if err := cli.record("ID", q.ID, "Question", q.Text, "Type", q.Type, "Answer", orDash(answer)); err != nil {
				return err
			}
			for _, opt := range q.Options {
				fmt.Fprintf(cli.out, "  %s) %s\n", opt.ID, opt.Text)
			}
			return nil
		}),
	}

	del := &cobra.Command{Use: "delete ID", Short: "Remove a question", Args: cobra.ExactArgs(1)}
	yes := confirmFlag(del)
	del.RunE = cli.guarded(auth.PageQuestions, func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNoConfirm
		}
		if err := wait(svc().DeleteQuestion(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Question %s deleted.\n", args[0])
		return nil
	})

	return group("questions", "Manage the question bank", list, get, del)
}

// Missions

func (cli *commandLine) missionsCmd() *cobra.Command {
	svc := func() *mission.Service { return cli.app.Missions }

	var search, subjectID, classID, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the missions",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageMissions, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{
				"search":    search,
				"subjectId": subjectID,
				"classId":   classID,
				"status":    status,
			})
			if err := wait(svc().FetchMissions(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, m := range svc().Slice().Items() {
				rows = append(rows, []string{m.ID, m.Title, m.Status, itoa(len(m.QuestionIDs)), itoa(m.TotalPoints), date(m.DueDate)})
			}
			return cli.table([]string{"ID", "TITLE", "STATUS", "QUESTIONS", "POINTS", "DUE"}, rows)
		}),
	}
	list.Flags().StringVarP(&search, "search", "s", "", "title contains")
	list.Flags().StringVar(&subjectID, "subject", "", "subject id")
	list.Flags().StringVar(&classID, "class", "", "class id")
	list.Flags().StringVar(&status, "status", "", "draft|published|closed")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show a mission",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageMissions, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchMission(cmd.Context(), args[0])); err != nil {
				return err
			}
			m, _ := svc().Slice().Current()
			return cli.record(
				"ID", m.ID, "Title", m.Title, "Status", m.Status, "Classes", strings.Join(m.ClassIDs, ", "),
				"Questions", strings.Join(m.QuestionIDs, ", "), "Points", itoa(m.TotalPoints),
				"XP reward", itoa(m.XPReward), "Due", date(m.DueDate),
			)
		}),
	}

	del := &cobra.Command{Use: "delete ID", Short: "Remove a mission", Args: cobra.ExactArgs(1)}
	yes := confirmFlag(del)
	del.RunE = cli.guarded(auth.PageMissions, func(cmd *cobra.Command, args []string) error {
		if !*yes {
			return errNoConfirm
		}
		if err := wait(svc().DeleteMission(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Mission %s deleted.\n", args[0])
		return nil
	})

	publish := &cobra.Command{
		Use:   "publish ID",
		Short: "Publish a draft mission to its classes",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageMissions, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().PublishMission(cmd.Context(), args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Mission %s published.\n", args[0])
			return nil
		}),
	}

	results := &cobra.Command{
		Use:   "results ID",
		Short: "Show the results of a mission",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageMissions, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchResults(cmd.Context(), args[0])); err != nil {
				return err
			}
			res, _ := svc().Results(args[0])
			if err := cli.record(
				"Assigned", itoa(res.Assigned), "Completed", itoa(res.Completed),
				"Average score", ftoa(res.AverageScore), "Completion", percent(res.CompletionRate),
			); err != nil {
				return err
			}
			var rows [][]string
			for _, a := range res.Attempts {
				rows = append(rows, []string{a.StudentName, ftoa(a.Score), itoa(a.XPEarned)})
			}
			return cli.table([]string{"STUDENT", "SCORE", "XP"}, rows)
		}),
	}

	return group("missions", "Manage the missions (tests)", list, get, del, publish, results)
}

// Reports

func (cli *commandLine) reportsCmd() *cobra.Command {
	svc := func() *report.Service { return cli.app.Reports }

	var period, typ string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the generated reports",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageReports, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{"period": period, "type": typ})
			if err := wait(svc().FetchReports(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, r := range svc().Slice().Items() {
				rows = append(rows, []string{r.ID, r.Title, r.Type, r.Period, r.Status, orDash(r.URL)})
			}
			return cli.table([]string{"ID", "TITLE", "TYPE", "PERIOD", "STATUS", "URL"}, rows)
		}),
	}
	list.Flags().StringVarP(&period, "period", "p", "month", "week|month|term|year")
	list.Flags().StringVar(&typ, "type", "", "school|class|student|teacher")

	var ovPeriod string
	overview := &cobra.Command{
		Use:   "overview",
		Short: "Show the school overview",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageReports, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{"period": ovPeriod})
			if err := wait(svc().FetchOverview(cmd.Context())); err != nil {
				return err
			}
			ov := svc().Slice().Extra().Overview
			return cli.record(
				"Students", itoa(ov.TotalStudents), "Teachers", itoa(ov.TotalTeachers),
				"Classes", itoa(ov.TotalClasses), "Active missions", itoa(ov.ActiveMissions),
				"Average score", ftoa(ov.AverageScore), "Attendance", ftoa(ov.AverageAttendance)+"%",
				"Engagement", ftoa(ov.EngagementRate)+"%",
			)
		}),
	}
	overview.Flags().StringVarP(&ovPeriod, "period", "p", "month", "week|month|term|year")

	var req report.Request
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageReports, func(cmd *cobra.Command, _ []string) error {
			if err := wait(svc().GenerateReport(cmd.Context(), req)); err != nil {
				return err
			}
			if r, ok := svc().Slice().Current(); ok {
				return cli.record("ID", r.ID, "Title", r.Title, "Status", r.Status, "URL", orDash(r.URL))
			}
			fmt.Fprintln(cli.out, "Report requested.")
			return nil
		}),
	}
	generate.Flags().StringVar(&req.Type, "type", report.TypeSchool, "school|class|student|teacher")
	generate.Flags().StringVar(&req.TargetID, "target", "", "class, student or teacher id")
	generate.Flags().StringVarP(&req.Period, "period", "p", "month", "week|month|term|year")
	generate.Flags().StringVar(&req.Format, "format", "pdf", "pdf|csv")

	classReport := &cobra.Command{
		Use:   "class ID",
		Short: "Show the report of a class",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageReports, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchClassReport(cmd.Context(), args[0])); err != nil {
				return err
			}
			cr := svc().Slice().Extra().ClassReport
			if cr == nil {
				return nil
			}
			if err := cli.record("Class", cr.ClassName, "Average score", ftoa(cr.AverageScore), "Completion", percent(cr.CompletionRate)); err != nil {
				return err
			}
			var rows [][]string
			for i, st := range cr.TopStudents {
				rows = append(rows, []string{itoa(i + 1), st.Name, ftoa(st.Score)})
			}
			return cli.table([]string{"#", "TOP STUDENT", "SCORE"}, rows)
		}),
	}

	studentReport := &cobra.Command{
		Use:   "student ID",
		Short: "Show the report of a student",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageReports, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().FetchStudentReport(cmd.Context(), args[0])); err != nil {
				return err
			}
			sr := svc().Slice().Extra().StudentReport
			if sr == nil {
				return nil
			}
			return cli.record(
				"Student", sr.Name, "Average score", ftoa(sr.AverageScore), "XP", itoa(sr.XP),
				"Strengths", orDash(strings.Join(sr.Strengths, ", ")), "Weaknesses", orDash(strings.Join(sr.Weaknesses, ", ")),
			)
		}),
	}

	return group("reports", "School, class and student reports", list, overview, generate, classReport, studentReport)
}

// AI suggestions

func (cli *commandLine) aiCmd() *cobra.Command {
	svc := func() *suggestion.Service { return cli.app.Suggestions }

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the past suggestions",
		Args:  cobra.NoArgs,
		RunE: cli.guarded(auth.PageSuggestions, func(cmd *cobra.Command, _ []string) error {
			svc().Slice().SetFilters(map[string]string{"status": status})
			if err := wait(svc().FetchSuggestions(cmd.Context())); err != nil {
				return err
			}
			var rows [][]string
			for _, s := range svc().Slice().Items() {
				rows = append(rows, []string{s.ID, s.Type, s.Status, itoa(len(s.Questions)), s.Prompt})
			}
			return cli.table([]string{"ID", "TYPE", "STATUS", "QUESTIONS", "PROMPT"}, rows)
		}),
	}
	list.Flags().StringVar(&status, "status", "", "pending|accepted|dismissed")

	var req suggestion.Request
	suggest := &cobra.Command{
		Use:   "suggest PROMPT...",
		Short: "Ask the assistant for questions, a lesson plan or an activity",
		Args:  cobra.MinimumNArgs(1),
		RunE: cli.guarded(auth.PageSuggestions, func(cmd *cobra.Command, args []string) error {
			req.Prompt = strings.Join(args, " ")
			if err := wait(svc().RequestSuggestion(cmd.Context(), req)); err != nil {
				return err
			}
			s, ok := svc().Slice().Current()
			if !ok {
				return nil
			}
			if err := cli.record("ID", s.ID, "Type", s.Type, "Status", s.Status); err != nil {
				return err
			}
			if s.Content != "" {
				fmt.Fprintln(cli.out, s.Content)
			}
			for i, q := range s.Questions {
				fmt.Fprintf(cli.out, "%d. %s\n", i+1, q.Text)
			}
			return nil
		}),
	}
	suggest.Flags().StringVar(&req.Type, "type", suggestion.TypeQuestions, "questions|lesson_plan|activity")
	suggest.Flags().StringVar(&req.SubjectID, "subject", "", "subject id")
	suggest.Flags().StringVar(&req.Topic, "topic", "", "topic")
	suggest.Flags().StringVar(&req.Difficulty, "difficulty", "", "easy|medium|hard")
	suggest.Flags().IntVarP(&req.Count, "count", "n", 0, "number of questions")

	accept := &cobra.Command{
		Use:   "accept ID",
		Short: "Accept a suggestion; its questions join the question bank",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageSuggestions, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().AcceptSuggestion(cmd.Context(), args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Suggestion %s accepted.\n", args[0])
			return nil
		}),
	}

	dismiss := &cobra.Command{
		Use:   "dismiss ID",
		Short: "Dismiss a suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: cli.guarded(auth.PageSuggestions, func(cmd *cobra.Command, args []string) error {
			if err := wait(svc().DismissSuggestion(cmd.Context(), args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Suggestion %s dismissed.\n", args[0])
			return nil
		}),
	}

	return group("ai", "AI teaching assistant", list, suggest, accept, dismiss)
}
