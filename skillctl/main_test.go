package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/api/apitest"
	"github.com/theleywin/SkillShare/src/config"
	"github.com/theleywin/SkillShare/src/models"
)

type cli struct {
	t       *testing.T
	backend *apitest.Backend
	dataDir string
}

func newCLI(t *testing.T) *cli {
	return &cli{t: t, backend: apitest.New(), dataDir: t.TempDir()}
}

// run executes one skillctl invocation with a fresh process state. Only the
// data directory carries over between runs.
func (c *cli) run(args ...string) (stdout, stderr string, err error) {
	c.t.Helper()
	app := &cliApp{
		cfg: config.Client{
			APIURL:       apitest.BaseURL,
			DataDir:      c.dataDir,
			Timeout:      5 * time.Second,
			PollInterval: time.Hour,
			LogLevel:     "error",
		},
		transport: c.backend.Transport(),
	}
	var out, errOut bytes.Buffer
	err = execute(context.Background(), app, args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, _, err := c.run(args...)
	require.NoError(c.t, err, "skillctl %v", args)
	return out
}

func (c *cli) login(name string) models.UserDto {
	c.t.Helper()
	email := map[string]string{"Ada": "ada@example.com", "Grace": "grace@example.com"}[name]
	user := c.backend.AddUser(name, email, "secret1")
	c.mustRun("login", "--email", email, "--password", "secret1")
	return user
}

func TestLoginSurvivesAcrossInvocations(t *testing.T) {
	c := newCLI(t)
	c.backend.AddUser("Ada", "ada@example.com", "secret1")

	out := c.mustRun("login", "--email", "ada@example.com", "--password", "secret1")
	assert.Contains(t, out, "Logged in as Ada <ada@example.com>")

	assert.Contains(t, c.mustRun("whoami"), "Ada <ada@example.com> (id 1)")
}

func TestLoginRejectedLeavesNoSession(t *testing.T) {
	c := newCLI(t)
	c.backend.AddUser("Ada", "ada@example.com", "secret1")

	_, _, err := c.run("login", "--email", "ada@example.com", "--password", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.Contains(t, c.mustRun("whoami"), "Not logged in")
}

func TestRegisterLogsIn(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")
	assert.Contains(t, out, "Welcome, Ada")
	assert.Contains(t, c.mustRun("whoami"), "Ada")
}

func TestProtectedCommandsNeedLogin(t *testing.T) {
	c := newCLI(t)
	for _, args := range [][]string{{"feed"}, {"plans", "list"}, {"notifications", "list"}, {"follow", "2"}} {
		_, _, err := c.run(args...)
		assert.True(t, errors.Is(err, errNotLoggedIn), "%v: %v", args, err)
	}
}

func TestCreatePostAndReadFeed(t *testing.T) {
	c := newCLI(t)
	c.login("Ada")

	assert.Contains(t, c.mustRun("post", "create", "--content", "Hello gophers"), "Published post")

	feed := c.mustRun("feed")
	assert.Contains(t, feed, "Hello gophers")
	assert.Contains(t, feed, "1 posts, 0 likes, 0 comments")
}

func TestLikeAndComment(t *testing.T) {
	c := newCLI(t)
	ada := c.login("Ada")
	grace := c.backend.AddUser("Grace", "grace@example.com", "secret1")
	post := c.backend.AddPost(grace.ID, "Rust tips")

	assert.Contains(t, c.mustRun("post", "like", post.ID), "Liked post "+post.ID+" (1 likes)")
	assert.Contains(t, c.mustRun("comments", "add", post.ID, "very", "useful"), "(1 comments)")
	assert.Contains(t, c.mustRun("comments", "list", post.ID), "very useful")

	notifications := c.backend.Notifications(grace.ID)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		require.NotNil(t, n.RelatedUser)
		assert.Equal(t, ada.ID, n.RelatedUser.ID)
	}
}

func TestDeleteForeignPostIsRefused(t *testing.T) {
	c := newCLI(t)
	c.login("Ada")
	grace := c.backend.AddUser("Grace", "grace@example.com", "secret1")
	post := c.backend.AddPost(grace.ID, "mine")

	_, _, err := c.run("post", "delete", post.ID)
	require.Error(t, err)
	_, ok := c.backend.PostAs(post.ID, grace.ID)
	assert.True(t, ok)
}

func TestCompleteTaskShowsProgress(t *testing.T) {
	c := newCLI(t)
	ada := c.login("Ada")
	plan := c.backend.AddPlan(ada.ID, models.LearningPlanRequest{
		Topic: "Go",
		Tasks: []models.TaskRequest{{Description: "read the tour"}, {Description: "write a CLI"}},
	})

	out := c.mustRun("plans", "complete", plan.ID, plan.Tasks[0].ID)
	assert.Contains(t, out, `Completed "read the tour", plan is 50% done`)

	list := c.mustRun("plans", "list", "--mine")
	assert.Contains(t, list, "50% done")
	assert.Contains(t, list, "[x] "+plan.Tasks[0].ID)
}

func TestCreatePlanRejectsBadDates(t *testing.T) {
	c := newCLI(t)
	c.login("Ada")

	_, _, err := c.run("plans", "create", "--topic", "Go", "--start", "2024-05-10", "--end", "2024-05-01")
	require.Error(t, err)

	out := c.mustRun("plans", "create", "--topic", "Go", "--task", "one", "--task", "two")
	assert.Contains(t, out, "with 2 tasks")
}

func TestFollowToggles(t *testing.T) {
	c := newCLI(t)
	c.login("Ada")
	grace := c.backend.AddUser("Grace", "grace@example.com", "secret1")

	assert.Contains(t, c.mustRun("follow", grace.ID), "Now following Grace (1 followers)")
	assert.Contains(t, c.mustRun("following"), "Grace")
	assert.Contains(t, c.mustRun("follow", grace.ID), "Unfollowed Grace (0 followers)")
}

func TestLogoutClearsLocalSessionWhenServerFails(t *testing.T) {
	c := newCLI(t)
	c.login("Ada")
	c.backend.FailNext("POST", "/api/auth/logout", 500, "boom")

	out, stderr, err := c.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.Contains(t, stderr, "did not confirm")
	assert.Contains(t, c.mustRun("whoami"), "Not logged in")
}

func TestNotificationsWatchOnce(t *testing.T) {
	c := newCLI(t)
	ada := c.login("Ada")
	grace := c.backend.AddUser("Grace", "grace@example.com", "secret1")
	c.backend.AddNotification(ada.ID, grace.ID, models.NotificationTypeFollow)

	assert.Contains(t, c.mustRun("notifications", "watch", "--once"), "1 unread notifications")
	assert.Contains(t, c.mustRun("notifications", "list"), "1 unread")
}

func TestNotificationsWatchEndsWhenSessionIsRejected(t *testing.T) {
	c := newCLI(t)
	c.login("Ada")
	c.backend.FailNext("GET", "/api/notifications", 401, "Unauthorized - Invalid Token")

	_, _, err := c.run("notifications", "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
	assert.Contains(t, c.mustRun("whoami"), "Not logged in")
}

func TestOAuthPrintsLoginAddress(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("oauth", "github")
	assert.Contains(t, out, apitest.BaseURL+"/oauth2/authorization/github")
	assert.Contains(t, c.mustRun("whoami"), "Not logged in")
}
