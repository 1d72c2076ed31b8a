package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/gyaanbuddy/apps/dashboard"
	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/store"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in, run `admin login` first")
	errNoConfirm   = errors.New("refusing to delete without --yes")
)

type commandLine struct {
	app *dashboard.App
	out io.Writer
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Gyaan Buddy school administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cli.app.Start(cmd.Context())
		},
		RunE: usage,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.loginCmd(),
		cli.logoutCmd(),
		cli.whoamiCmd(),
		cli.navCmd(),
		cli.passwordCmd(),
		cli.teachersCmd(),
		cli.leaderboardCmd(),
		cli.studentsCmd(),
		cli.classesCmd(),
		cli.subjectsCmd(),
		cli.questionsCmd(),
		cli.missionsCmd(),
		cli.reportsCmd(),
		cli.aiCmd(),
	)
	return root
}

func usage(cmd *cobra.Command, _ []string) error {
	_ = cmd.Usage()
	return errHelp
}

func group(use, short string, subs ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short, RunE: usage}
	cmd.AddCommand(subs...)
	return cmd
}

// guarded runs fn only when the logged in user's navigation includes page.
func (cli *commandLine) guarded(page string, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if !cli.app.Auth.Authenticated() {
			return errNotLoggedIn
		}
		if role := cli.app.Auth.Role(); !auth.CanAccess(role, page) {
			return errors.Errorf("the %s role has no access to %s", role, page)
		}
		return fn(cmd, args)
	}
}

// wait waits for op and turns its failure into the message recorded by the slice.
func wait(op *store.Op) error {
	if err := op.Wait(); err != nil {
		return errors.New(store.Message(err))
	}
	return nil
}

func (cli *commandLine) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// record prints label/value pairs, one per line.
func (cli *commandLine) record(pairs ...string) error {
	tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(tw, "%s:\t%s\n", pairs[i], pairs[i+1])
	}
	return tw.Flush()
}

func (cli *commandLine) pagination(p store.Pagination) {
	if p.TotalPages > 1 {
		fmt.Fprintf(cli.out, "page %d/%d (%d items)\n", p.Page, p.TotalPages, p.TotalItems)
	}
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func confirmFlag(cmd *cobra.Command) *bool {
	return cmd.Flags().BoolP("yes", "y", false, "confirm the deletion")
}

func itoa(i int) string { return strconv.Itoa(i) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func percent(f float64) string { return strconv.FormatFloat(f*100, 'f', 0, 64) + "%" }

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
