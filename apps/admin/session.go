package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/gyaanbuddy/core/auth"
)

func (cli *commandLine) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in; the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return usage(cmd, nil)
			}
			pwd, err := cli.promptPassword("Enter password:")
			if err != nil {
				return err
			}
			if pwd == "" {
				return usage(cmd, nil)
			}
			if err = wait(cli.app.Auth.Login(cmd.Context(), auth.Credentials{Email: email, Password: pwd})); err != nil {
				return err
			}
			usr, _ := cli.app.Auth.User()
			fmt.Fprintf(cli.out, "Welcome, %s (%s)\n", usr.Name, usr.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "the account's email")
	return cmd
}

func (cli *commandLine) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := wait(cli.app.Auth.Logout(cmd.Context())); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Logged out.")
			return nil
		},
	}
}

func (cli *commandLine) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			usr, ok := cli.app.Auth.User()
			if !ok {
				return errNotLoggedIn
			}
			return cli.record("Name", usr.Name, "Email", usr.Email, "Role", usr.Role, "School", orDash(usr.School))
		},
	}
}

func (cli *commandLine) navCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "List the pages available to the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if !cli.app.Auth.Authenticated() {
				return errNotLoggedIn
			}
			var rows [][]string
			for _, item := range cli.app.Auth.Navigation() {
				rows = append(rows, []string{item.Label, item.Path})
			}
			return cli.table([]string{"PAGE", "PATH"}, rows)
		},
	}
}

func (cli *commandLine) passwordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change the password of the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cli.app.Auth.Authenticated() {
				return errNotLoggedIn
			}
			var pc auth.PasswordChange
			var err error
			if pc.CurrentPassword, err = cli.promptPassword("Current password:"); err != nil {
				return err
			}
			if pc.NewPassword, err = cli.promptPassword("New password:"); err != nil {
				return err
			}
			if pc.PasswordConfirm, err = cli.promptPassword("Confirm new password:"); err != nil {
				return err
			}
			if err = wait(cli.app.Auth.ChangePassword(cmd.Context(), pc)); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Password changed.")
			return nil
		},
	}
}
