package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/reconcile"
)

// loadFeed returns the loaded feed, or the posts of userID when it is set.
func (a *cliApp) loadFeed(ctx context.Context, userID string) (*reconcile.Posts, error) {
	feed := reconcile.NewFeed(a.client, a.session)
	if userID != "" {
		feed = reconcile.NewUserPosts(a.client, a.session, userID)
	}
	return feed, feed.Load(ctx)
}

func newFeedCmd(app *cliApp) *cobra.Command {
	var userID, query string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show recent posts",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			feed, err := app.loadFeed(cmd.Context(), userID)
			if err != nil {
				return err
			}
			defer feed.Close()
			printPosts(cmd.OutOrStdout(), feed.Search(query))
			return nil
		}),
	}
	cmd.Flags().StringVar(&userID, "user", "", "only show posts by this user id")
	cmd.Flags().StringVar(&query, "search", "", "only show posts whose author or text matches")
	return cmd
}

// openMedia opens the files named on the command line. The returned function
// closes them.
func openMedia(paths []string) ([]api.MediaFile, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	media := make([]api.MediaFile, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, func() {}, errors.Wrap(err, "open media")
		}
		files = append(files, f)
		media = append(media, api.MediaFile{Name: filepath.Base(path), Reader: f})
	}
	return media, closeAll, nil
}

func newPostCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Write and manage posts",
	}

	var content string
	var mediaPaths []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a post with optional media files",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			media, closeMedia, err := openMedia(mediaPaths)
			if err != nil {
				return err
			}
			defer closeMedia()
			feed, err := app.loadFeed(cmd.Context(), app.session.UserID())
			if err != nil {
				return err
			}
			post, err := feed.Create(cmd.Context(), api.PostInput{Content: content, Media: media})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published post %s\n", post.ID)
			return nil
		}),
	}
	create.Flags().StringVar(&content, "content", "", "text of the post")
	create.Flags().StringArrayVar(&mediaPaths, "media", nil, "image or video file to attach (repeatable)")

	var editContent string
	var editMedia []string
	edit := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Change the text or media of one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			media, closeMedia, err := openMedia(editMedia)
			if err != nil {
				return err
			}
			defer closeMedia()
			feed, err := app.ownPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			post, err := feed.Update(cmd.Context(), args[0], api.PostInput{Content: editContent, Media: media})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated post %s\n", post.ID)
			return nil
		}),
	}
	edit.Flags().StringVar(&editContent, "content", "", "new text, empty keeps the current one")
	edit.Flags().StringArrayVar(&editMedia, "media", nil, "replacement media file (repeatable)")

	remove := &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			feed, err := app.ownPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := feed.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %s\n", args[0])
			return nil
		}),
	}

	like := &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post, or take the like back",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			feed, err := app.loadFeed(cmd.Context(), "")
			if err != nil {
				return err
			}
			res, err := feed.ToggleLike(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			verb := "Unliked"
			if res.Liked {
				verb = "Liked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s post %s (%d likes)\n", verb, args[0], res.LikeCount)
			return nil
		}),
	}

	var shareComment string
	share := &cobra.Command{
		Use:   "share <post-id>",
		Short: "Share a post with your followers",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			feed, err := app.loadFeed(cmd.Context(), "")
			if err != nil {
				return err
			}
			shared, err := feed.Share(cmd.Context(), args[0], shareComment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared post %s as %s\n", args[0], shared.ID)
			return nil
		}),
	}
	share.Flags().StringVar(&shareComment, "comment", "", "comment to share the post with")

	search := &cobra.Command{
		Use:   "search <text>",
		Short: "Find posts by author or text",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			feed, err := app.loadFeed(cmd.Context(), "")
			if err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), feed.Search(strings.Join(args, " ")))
			return nil
		}),
	}

	cmd.AddCommand(create, edit, remove, like, share, search)
	return cmd
}

// ownPost loads the viewer's posts and checks that id is one of them.
func (a *cliApp) ownPost(ctx context.Context, id string) (*reconcile.Posts, error) {
	feed, err := a.loadFeed(ctx, a.session.UserID())
	if err != nil {
		return nil, err
	}
	if _, ok := feed.Get(id); !ok {
		return nil, &api.NotFoundError{Kind: "post", ID: id}
	}
	if !feed.CanModify(id) {
		return nil, errors.New("you can only change your own posts")
	}
	return feed, nil
}

func newCommentsCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and write comments",
	}

	open := func(ctx context.Context, postID string) (*reconcile.Comments, error) {
		comments := reconcile.NewComments(app.client, app.session, postID, nil)
		return comments, comments.Load(ctx)
	}

	list := &cobra.Command{
		Use:   "list <post-id>",
		Short: "Show the comments of a post",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			comments, err := open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printComments(cmd.OutOrStdout(), comments.Items())
			return nil
		}),
	}

	add := &cobra.Command{
		Use:   "add <post-id> <text>...",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			comments, err := open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			comment, err := comments.Create(cmd.Context(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added comment %s (%d comments)\n", comment.ID, comments.Len())
			return nil
		}),
	}

	edit := &cobra.Command{
		Use:   "edit <post-id> <comment-id> <text>...",
		Short: "Change one of your comments",
		Args:  cobra.MinimumNArgs(3),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			comments, err := open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if comments.Has(args[1]) && !comments.CanModify(args[1]) {
				return errors.New("you can only edit your own comments")
			}
			if _, err := comments.Update(cmd.Context(), args[1], strings.Join(args[2:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated comment %s\n", args[1])
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "delete <post-id> <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			comments, err := open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := comments.Remove(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment %s\n", args[1])
			return nil
		}),
	}

	cmd.AddCommand(list, add, edit, remove)
	return cmd
}

func newSharedCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shared",
		Short: "Posts shared by you or by others",
	}

	var userID string
	list := &cobra.Command{
		Use:   "list",
		Short: "Show shared posts",
		Args:  cobra.NoArgs,
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			shared := reconcile.NewMySharedPosts(app.client)
			if userID != "" {
				shared = reconcile.NewUserSharedPosts(app.client, userID)
			}
			if err := shared.Load(cmd.Context()); err != nil {
				return err
			}
			printShared(cmd.OutOrStdout(), shared.Items())
			return nil
		}),
	}
	list.Flags().StringVar(&userID, "user", "", "show what this user id shared")

	remove := &cobra.Command{
		Use:   "delete <shared-id>",
		Short: "Stop sharing a post. The post itself stays.",
		Args:  cobra.ExactArgs(1),
		RunE: app.authed(func(cmd *cobra.Command, args []string) error {
			shared := reconcile.NewMySharedPosts(app.client)
			if err := shared.Load(cmd.Context()); err != nil {
				return err
			}
			if err := shared.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted share %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, remove)
	return cmd
}
