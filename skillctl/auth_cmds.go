package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theleywin/SkillShare/src/session"
)

func newLoginCmd(app *cliApp) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session.LoginWithCredentials(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", describeSession(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newRegisterCmd(app *cliApp) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log into it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", describeSession(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (at least 6 characters)")
	return cmd
}

func newLogoutCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: the server did not confirm the logout: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := app.session.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeSession(s))
			if s.Bio != "" {
				fmt.Fprintln(cmd.OutOrStdout(), s.Bio)
			}
			return nil
		},
	}
}

func newOAuthCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:       "oauth <google|github>",
		Short:     "Sign in with an external identity provider",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"google", "github"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.session.LoginWithExternalProvider(args[0])
		},
	}
}

func describeSession(s session.Session) string {
	return fmt.Sprintf("%s <%s> (id %s)", s.Name, s.Email, s.UserID)
}
