package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/poller"
	"github.com/theleywin/SkillShare/src/reconcile"
)

func newFollowCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow a user, or unfollow when you already do",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			target, err := app.client.User(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if target == nil {
				return &api.NotFoundError{Kind: "user", ID: args[0]}
			}
			following := reconcile.NewFollowing(app.client, app.session, app.session.UserID())
			if err := following.Load(cmd.Context()); err != nil {
				return err
			}
			res, err := following.Toggle(cmd.Context(), *target)
			if err != nil {
				return err
			}
			verb := "Unfollowed"
			if res.Following {
				verb = "Now following"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d followers)\n", verb, target.Name, res.FollowerCount)
			return nil
		}),
	}
}

func newFollowingCmd(app *cliApp) *cobra.Command {
	var followers bool
	cmd := &cobra.Command{
		Use:   "following [user-id]",
		Short: "List who a user follows, yourself by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			userID := app.session.UserID()
			if len(args) == 1 {
				userID = args[0]
			}
			list := reconcile.NewFollowing(app.client, app.session, userID)
			if followers {
				list = reconcile.NewFollowers(app.client, app.session, userID)
			}
			if err := list.Load(cmd.Context()); err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), list.Items())
			return nil
		}),
	}
	cmd.Flags().BoolVar(&followers, "followers", false, "list followers instead")
	return cmd
}

func newProfileCmd(app *cliApp) *cobra.Command {
	var name, bio, photo string
	cmd := &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show a profile, or edit your own",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("name") || cmd.Flags().Changed("bio") || photo != "" {
				if len(args) == 1 && args[0] != app.session.UserID() {
					return &api.AuthorizationError{Message: "you can only edit your own profile"}
				}
				var req models.ProfileRequest
				if cmd.Flags().Changed("name") {
					req.Name = &name
				}
				if cmd.Flags().Changed("bio") {
					req.Bio = &bio
				}
				if req.Name != nil || req.Bio != nil {
					if _, err := app.session.UpdateProfile(cmd.Context(), req); err != nil {
						return err
					}
				}
				if photo != "" {
					f, err := os.Open(photo)
					if err != nil {
						return errors.Wrap(err, "open photo")
					}
					defer f.Close()
					if _, err := app.session.UploadPhoto(cmd.Context(), filepath.Base(photo), f); err != nil {
						return err
					}
				}
				fmt.Fprintln(out, "Profile updated")
				return nil
			}

			userID := app.session.UserID()
			if len(args) == 1 {
				userID = args[0]
			}
			user, err := app.client.User(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if user == nil {
				return &api.NotFoundError{Kind: "user", ID: userID}
			}
			profile, err := reconcile.LoadProfile(cmd.Context(), app.client, app.session, userID)
			if err != nil {
				return err
			}
			defer profile.Close()

			fmt.Fprintf(out, "%s (id %s)\n", user.Name, user.ID)
			if user.Bio != "" {
				fmt.Fprintln(out, user.Bio)
			}
			fmt.Fprintf(out, "%d followers, %d following", user.FollowerCount, user.FollowingCount)
			if user.ID != app.session.UserID() {
				fmt.Fprintf(out, ", you follow: %s", yesNo(user.IsFollowing))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "\nPosts")
			printPosts(out, profile.Posts.Items())
			fmt.Fprintln(out, "\nShared")
			printShared(out, profile.Shared.Items())
			fmt.Fprintln(out, "\nFollowing")
			printUsers(out, profile.Following.Items())
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&bio, "bio", "", "new bio")
	cmd.Flags().StringVar(&photo, "photo", "", "image file to use as profile photo")
	return cmd
}

func newNotificationsCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Likes, comments, shares and follows from others",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show your notifications",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			notifications, err := app.client.Notifications(cmd.Context())
			if err != nil {
				return err
			}
			printNotifications(cmd.OutOrStdout(), notifications)
			return nil
		}),
	}

	read := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			if _, err := app.client.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as read\n", args[0])
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "delete <notification-id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			if err := app.client.DeleteNotification(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted notification %s\n", args[0])
			return nil
		}),
	}

	var once bool
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print the unread count whenever it changes",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p := poller.New(app.client, app.cfg.PollInterval)
			if once {
				unread, err := p.PollNow(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d unread notifications\n", unread)
				return nil
			}

			last := -1
			p.Subscribe(func(unread int) {
				if unread != last {
					last = unread
					fmt.Fprintf(out, "%d unread notifications\n", unread)
				}
			})
			rejected := make(chan error, 1)
			p.OnUnauthorized(func(err error) {
				select {
				case rejected <- err:
				default:
				}
			})
			p.Follow(cmd.Context(), app.session)
			defer p.Stop()
			select {
			case <-cmd.Context().Done():
				return nil
			case err := <-rejected:
				return err
			}
		}),
	}
	watch.Flags().BoolVar(&once, "once", false, "poll once and exit")

	cmd.AddCommand(list, read, remove, watch)
	return cmd
}
