package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testApp(user models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	_ = json.NewDecoder(res.Body).Decode(&decoded)
	return res.StatusCode, decoded
}

func TestRegisterValidatesBeforeStorage(t *testing.T) {
	app := fiber.New()
	app.Post("/register", Register)

	status, body := doJSON(t, app, "POST", "/register", models.RegisterRequest{Name: "Ada", Email: "ada", Password: "123"})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "email must be a valid email; password must be at least 6 characters", body["message"])
}

func TestLoginRequiresCredentials(t *testing.T) {
	app := fiber.New()
	app.Post("/login", Login)

	status, body := doJSON(t, app, "POST", "/login", map[string]string{"email": "ada@example.com"})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "password is required", body["message"])
}

func TestLogoutClearsCookie(t *testing.T) {
	app := fiber.New()
	app.Post("/logout", Logout)

	res, err := app.Test(httptest.NewRequest("POST", "/logout", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Set-Cookie"), "jwt-skillshare=;")
}

func TestCreatePostRequiresContentOrMedia(t *testing.T) {
	app := testApp(models.User{Id: primitive.NewObjectID()})
	app.Post("/posts", CreatePost)

	status, body := doJSON(t, app, "POST", "/posts", map[string]string{"content": "   "})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Post content or media is required", body["message"])
}

func TestHandlersRejectMalformedIDs(t *testing.T) {
	app := testApp(models.User{Id: primitive.NewObjectID()})
	app.Get("/posts/:id", GetPostByID)
	app.Post("/posts/:postId/comments", CreateComment)
	app.Post("/users/:id/follow/:followId", FollowUser)
	app.Post("/tasks/:taskId/complete", CompleteTask)
	app.Delete("/notifications/:id", DeleteNotification)

	cases := []struct {
		method  string
		path    string
		message string
	}{
		{"GET", "/posts/not-an-id", "Invalid post ID format"},
		{"POST", "/posts/nope/comments", "Invalid post ID format"},
		{"POST", "/users/nope/follow/" + primitive.NewObjectID().Hex(), "Invalid user ID format"},
		{"POST", "/tasks/nope/complete", "Invalid task ID format"},
		{"DELETE", "/notifications/nope", "Invalid notification ID format"},
	}
	for _, tc := range cases {
		status, body := doJSON(t, app, tc.method, tc.path, nil)
		assert.Equal(t, fiber.StatusBadRequest, status, tc.path)
		assert.Equal(t, tc.message, body["message"], tc.path)
	}
}

func TestFollowRejectsOtherUsersAndSelf(t *testing.T) {
	me := models.User{Id: primitive.NewObjectID()}
	app := testApp(me)
	app.Post("/users/:id/follow/:followId", FollowUser)

	status, _ := doJSON(t, app, "POST", "/users/"+primitive.NewObjectID().Hex()+"/follow/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := doJSON(t, app, "POST", "/users/"+me.Id.Hex()+"/follow/"+me.Id.Hex(), nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "You cannot follow yourself", body["message"])
}

func TestUpdateProfileOnlySelf(t *testing.T) {
	app := testApp(models.User{Id: primitive.NewObjectID()})
	app.Patch("/users/:id", UpdateProfile)

	status, _ := doJSON(t, app, "PATCH", "/users/"+primitive.NewObjectID().Hex(), map[string]string{"bio": "hi"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestCommentContentIsValidated(t *testing.T) {
	app := testApp(models.User{Id: primitive.NewObjectID()})
	app.Post("/posts/:postId/comments", CreateComment)

	status, body := doJSON(t, app, "POST", "/posts/"+primitive.NewObjectID().Hex()+"/comments", models.CommentRequest{Content: " "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "content is required", body["message"])
}

func TestExtendDateFromBody(t *testing.T) {
	want := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	for _, body := range []string{`"2024-07-01"`, `{"endDate":"2024-07-01"}`, `2024-07-01`, ` "2024-07-01T00:00:00" `} {
		got, err := extendDateFromBody([]byte(body))
		require.NoError(t, err, body)
		assert.True(t, want.Equal(got), body)
	}

	for _, body := range []string{``, `{}`, `"soon"`} {
		_, err := extendDateFromBody([]byte(body))
		assert.Error(t, err, body)
	}
}

