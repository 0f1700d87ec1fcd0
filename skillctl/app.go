package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/config"
	"github.com/theleywin/SkillShare/src/logging"
	"github.com/theleywin/SkillShare/src/session"
)

var errNotLoggedIn = errors.New("not logged in, run `skillctl login` first")

// cliApp holds what one invocation of skillctl works with. Resources are
// opened lazily before the command runs and released by close.
type cliApp struct {
	cfg       config.Client
	transport http.RoundTripper
	inMemory  bool

	out     io.Writer
	data    *session.BadgerStore
	client  *api.Client
	session *session.Store
}

func (a *cliApp) open(ctx context.Context, out io.Writer) error {
	logging.SetLevel(a.cfg.LogLevel)
	a.out = out

	dir := a.cfg.DataDir
	if a.inMemory {
		dir = ""
	}
	data, err := session.OpenBadger(dir, logging.For("badger"))
	if err != nil {
		return err
	}
	a.data = data

	opts := []api.Option{api.WithTimeout(a.cfg.Timeout)}
	if a.transport != nil {
		opts = append(opts, api.WithTransport(a.transport))
	}
	client, err := api.New(a.cfg.APIURL, opts...)
	if err != nil {
		return err
	}
	a.client = client

	cookies, err := data.LoadCookies()
	if err != nil {
		logging.For("skillctl").WithError(err).Warn("Ignoring saved credentials")
	}
	client.SetCookies(cookies)

	a.session = session.New(client, data, session.WithRedirector(a.showLoginURL))
	a.session.Restore(ctx)
	return nil
}

// close saves the cookie credentials and closes the data store. It is safe
// to call more than once.
func (a *cliApp) close() {
	if a.data == nil {
		return
	}
	if a.client != nil {
		if err := a.data.SaveCookies(a.client.Cookies()); err != nil {
			logging.For("skillctl").WithError(err).Warn("Failed to save credentials")
		}
	}
	if err := a.data.Close(); err != nil {
		logging.For("skillctl").WithError(err).Warn("Failed to close data store")
	}
	a.data = nil
}

func (a *cliApp) showLoginURL(url string) error {
	_, err := fmt.Fprintf(a.out, "Open this address in your browser to sign in:\n  %s\n", url)
	return err
}

func (a *cliApp) requireLogin() error {
	if !a.session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

// check ends the local session when the backend stopped accepting it.
func (a *cliApp) check(err error) error {
	if api.IsAuthentication(err) {
		a.session.Invalidate()
		return errors.Wrap(err, "session expired, log in again")
	}
	return err
}

// authed wraps a command body that needs a logged in user.
func (a *cliApp) authed(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		return a.check(run(cmd, args))
	}
}

func newRootCmd(app *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:          "skillctl",
		Short:        "Share skills, learning plans and progress from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open(cmd.Context(), cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVar(&app.cfg.APIURL, "api", app.cfg.APIURL, "SkillShare API address")
	root.PersistentFlags().StringVar(&app.cfg.DataDir, "data-dir", app.cfg.DataDir, "directory holding the saved session")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newOAuthCmd(app),
		newFeedCmd(app),
		newPostCmd(app),
		newCommentsCmd(app),
		newSharedCmd(app),
		newPlansCmd(app),
		newProgressCmd(app),
		newFollowCmd(app),
		newFollowingCmd(app),
		newProfileCmd(app),
		newNotificationsCmd(app),
	)
	return root
}
