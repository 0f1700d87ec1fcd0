package reconcile_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/reconcile"
)

func commentCount(t *testing.T, feed *reconcile.Posts, postID string) int {
	t.Helper()
	post, ok := feed.Get(postID)
	require.True(t, ok)
	return post.CommentCount
}

func TestRemovingCommentDecrementsParentOnce(t *testing.T) {
	e := newEnv(t)
	post := e.backend.AddPost(e.ada.ID, "p1")
	c1 := e.backend.AddComment(post.ID, e.grace.ID, "c1")
	c2 := e.backend.AddComment(post.ID, e.ada.ID, "c2")
	feed := loadedFeed(t, e)
	comments := reconcile.NewComments(e.client, e.viewer, post.ID, feed)
	ctx := context.Background()
	require.NoError(t, comments.Load(ctx))
	require.Equal(t, 2, commentCount(t, feed, post.ID))

	require.NoError(t, comments.Remove(ctx, c1.ID))

	items := comments.Items()
	require.Len(t, items, 1)
	assert.Equal(t, c2.ID, items[0].ID)
	assert.Equal(t, 1, commentCount(t, feed, post.ID))
}

func TestCommentCountMovesOnlyOnAcknowledgement(t *testing.T) {
	e := newEnv(t)
	post := e.backend.AddPost(e.grace.ID, "p1")
	feed := loadedFeed(t, e)
	comments := reconcile.NewComments(e.client, e.viewer, post.ID, feed)
	ctx := context.Background()
	require.NoError(t, comments.Load(ctx))

	created, err := comments.Create(ctx, "nice post")
	require.NoError(t, err)
	assert.Equal(t, post.ID, created.PostID)
	assert.Equal(t, 1, commentCount(t, feed, post.ID))

	e.backend.FailNext(http.MethodPost, "/api/posts/"+post.ID+"/comments", http.StatusInternalServerError, "down")
	_, err = comments.Create(ctx, "again")
	assert.Error(t, err)
	assert.Equal(t, 1, commentCount(t, feed, post.ID))

	_, err = comments.Create(ctx, "   ")
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, 1, commentCount(t, feed, post.ID))

	e.backend.FailNext(http.MethodDelete, "/api/posts/"+post.ID+"/comments/"+created.ID, http.StatusInternalServerError, "down")
	assert.Error(t, comments.Remove(ctx, created.ID))
	assert.Equal(t, 1, commentCount(t, feed, post.ID))
	assert.Equal(t, 1, comments.Len())
}

func TestCommentEditAndPermissions(t *testing.T) {
	e := newEnv(t)
	post := e.backend.AddPost(e.ada.ID, "mine")
	mine := e.backend.AddComment(post.ID, e.ada.ID, "mine")
	theirs := e.backend.AddComment(post.ID, e.grace.ID, "theirs")
	feed := loadedFeed(t, e)
	comments := reconcile.NewComments(e.client, e.viewer, post.ID, feed)
	ctx := context.Background()
	require.NoError(t, comments.Load(ctx))

	edited, err := comments.Update(ctx, mine.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	_, err = comments.Update(ctx, theirs.ID, "hijack")
	assert.True(t, api.IsAuthorization(err))
	held, _ := comments.Get(theirs.ID)
	assert.Equal(t, "theirs", held.Content)

	assert.True(t, comments.CanModify(mine.ID))
	assert.False(t, comments.CanModify(theirs.ID))
	assert.True(t, comments.CanRemove(theirs.ID))
	assert.False(t, comments.CanRemove("missing"))
	assert.Equal(t, post.ID, comments.PostID())
}

func TestCommentsWithoutParent(t *testing.T) {
	e := newEnv(t)
	post := e.backend.AddPost(e.grace.ID, "p1")
	comments := reconcile.NewComments(e.client, e.viewer, post.ID, nil)
	ctx := context.Background()
	require.NoError(t, comments.Load(ctx))

	created, err := comments.Create(ctx, "hello")
	require.NoError(t, err)
	require.NoError(t, comments.Remove(ctx, created.ID))
	assert.Zero(t, comments.Len())
	assert.False(t, comments.CanRemove(created.ID))
}

func TestParentCountsCommentsAcknowledgedAfterClose(t *testing.T) {
	e := newEnv(t)
	post := e.backend.AddPost(e.grace.ID, "p1")
	feed := loadedFeed(t, e)
	ctx := context.Background()
	path := "/api/posts/" + post.ID + "/comments"

	comments := reconcile.NewComments(e.client, e.viewer, post.ID, feed)
	require.NoError(t, comments.Load(ctx))
	entered, release := e.backend.Hold(http.MethodPost, path)
	done := make(chan error, 1)
	go func() {
		_, err := comments.Create(ctx, "late but accepted")
		done <- err
	}()
	<-entered
	comments.Close()
	release()

	assert.ErrorIs(t, <-done, reconcile.ErrClosed)
	assert.Equal(t, 1, commentCount(t, feed, post.ID))
	server, _ := e.backend.PostAs(post.ID, e.ada.ID)
	assert.Equal(t, server.CommentCount, commentCount(t, feed, post.ID))

	reopened := reconcile.NewComments(e.client, e.viewer, post.ID, feed)
	require.NoError(t, reopened.Load(ctx))
	require.Equal(t, 1, reopened.Len())
	created := reopened.Items()[0]

	entered, release = e.backend.Hold(http.MethodDelete, path+"/"+created.ID)
	go func() { done <- reopened.Remove(ctx, created.ID) }()
	<-entered
	reopened.Close()
	release()

	assert.ErrorIs(t, <-done, reconcile.ErrClosed)
	assert.Equal(t, 0, commentCount(t, feed, post.ID))
}

func TestParentKeepsCountWhenWriteFailsAfterClose(t *testing.T) {
	e := newEnv(t)
	post := e.backend.AddPost(e.grace.ID, "p1")
	feed := loadedFeed(t, e)
	ctx := context.Background()
	path := "/api/posts/" + post.ID + "/comments"

	comments := reconcile.NewComments(e.client, e.viewer, post.ID, feed)
	require.NoError(t, comments.Load(ctx))
	e.backend.FailNext(http.MethodPost, path, http.StatusInternalServerError, "down")
	entered, release := e.backend.Hold(http.MethodPost, path)
	done := make(chan error, 1)
	go func() {
		_, err := comments.Create(ctx, "rejected")
		done <- err
	}()
	<-entered
	comments.Close()
	release()

	err := <-done
	require.Error(t, err)
	assert.Equal(t, 0, commentCount(t, feed, post.ID))
}
