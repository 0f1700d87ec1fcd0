package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/lib"
	"github.com/theleywin/SkillShare/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func useMockDB(mt *mtest.T) {
	prev := lib.DB
	lib.DB = mt.DB
	mt.Cleanup(func() { lib.DB = prev })
}

func doc(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func found(t *testing.T, ns string, docs ...any) bson.D {
	t.Helper()
	batch := make([]bson.D, 0, len(docs))
	for _, v := range docs {
		batch = append(batch, doc(t, v))
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, batch...)
}

func modified(t *testing.T, v any) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc(t, v)})
}

func affected(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

// commands lists the command names sent to the server with their target
// collection, e.g. "find posts".
func commands(events []*event.CommandStartedEvent) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		coll, _ := ev.Command.Lookup(ev.CommandName).StringValueOK()
		names = append(names, ev.CommandName+" "+coll)
	}
	return names
}

func TestLikePostAddsLikerAndNotifiesAuthor(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("new like", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		post := models.Post{Id: primitive.NewObjectID(), Author: primitive.NewObjectID(), Content: "hello"}
		liked := post
		liked.LikedBy = []primitive.ObjectID{me.Id}
		mt.AddMockResponses(
			found(mt.T, "test.posts", post),
			modified(mt.T, liked),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}),
		)

		app := testApp(me)
		app.Post("/posts/:id/like", LikePost)
		status, body := doJSON(mt.T, app, "POST", "/posts/"+post.Id.Hex()+"/like", nil)

		require.Equal(mt, fiber.StatusOK, status)
		assert.Equal(mt, true, body["liked"])
		assert.Equal(mt, float64(1), body["likeCount"])

		events := mt.GetAllStartedEvents()
		require.Equal(mt, []string{"find posts", "findAndModify posts", "insert notifications"}, commands(events))
		assert.Equal(mt, me.Id, events[1].Command.Lookup("update", "$addToSet", "likedBy").ObjectID())
		assert.Equal(mt, post.Author, events[2].Command.Lookup("documents", "0", "recipient").ObjectID())
		assert.Equal(mt, "like", events[2].Command.Lookup("documents", "0", "type").StringValue())
	})

	mt.Run("own post", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		post := models.Post{Id: primitive.NewObjectID(), Author: me.Id}
		liked := post
		liked.LikedBy = []primitive.ObjectID{me.Id}
		mt.AddMockResponses(found(mt.T, "test.posts", post), modified(mt.T, liked))

		app := testApp(me)
		app.Post("/posts/:id/like", LikePost)
		status, _ := doJSON(mt.T, app, "POST", "/posts/"+post.Id.Hex()+"/like", nil)

		require.Equal(mt, fiber.StatusOK, status)
		assert.Equal(mt, []string{"find posts", "findAndModify posts"}, commands(mt.GetAllStartedEvents()))
	})
}

func TestLikePostTogglesExistingLikeOff(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unlike", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		other := primitive.NewObjectID()
		post := models.Post{Id: primitive.NewObjectID(), Author: primitive.NewObjectID(), LikedBy: []primitive.ObjectID{other, me.Id}}
		unliked := post
		unliked.LikedBy = []primitive.ObjectID{other}
		mt.AddMockResponses(found(mt.T, "test.posts", post), modified(mt.T, unliked))

		app := testApp(me)
		app.Post("/posts/:id/like", LikePost)
		status, body := doJSON(mt.T, app, "POST", "/posts/"+post.Id.Hex()+"/like", nil)

		require.Equal(mt, fiber.StatusOK, status)
		assert.Equal(mt, false, body["liked"])
		assert.Equal(mt, float64(1), body["likeCount"])

		events := mt.GetAllStartedEvents()
		require.Equal(mt, []string{"find posts", "findAndModify posts"}, commands(events))
		assert.Equal(mt, me.Id, events[1].Command.Lookup("update", "$pull", "likedBy").ObjectID())
		_, err := events[1].Command.LookupErr("update", "$addToSet")
		assert.Error(mt, err)
	})
}

func TestDeleteCommentDecrementsCountWithoutGoingNegative(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("author deletes", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		comment := models.Comment{Id: primitive.NewObjectID(), Post: primitive.NewObjectID(), Author: me.Id, Content: "nice"}
		mt.AddMockResponses(found(mt.T, "test.comments", comment), affected(1), affected(1))

		app := testApp(me)
		app.Delete("/posts/:postId/comments/:id", DeleteComment)
		status, body := doJSON(mt.T, app, "DELETE", "/posts/"+comment.Post.Hex()+"/comments/"+comment.Id.Hex(), nil)

		require.Equal(mt, fiber.StatusOK, status)
		assert.Equal(mt, "Comment deleted successfully", body["message"])

		events := mt.GetAllStartedEvents()
		require.Equal(mt, []string{"find comments", "delete comments", "update posts"}, commands(events))
		update := events[2].Command
		assert.Equal(mt, comment.Post, update.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, int64(0), update.Lookup("updates", "0", "q", "commentCount", "$gt").AsInt64())
		assert.Equal(mt, int64(-1), update.Lookup("updates", "0", "u", "$inc", "commentCount").AsInt64())
	})

	mt.Run("post author deletes another's comment", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		post := models.Post{Id: primitive.NewObjectID(), Author: me.Id, CommentCount: 1}
		comment := models.Comment{Id: primitive.NewObjectID(), Post: post.Id, Author: primitive.NewObjectID()}
		mt.AddMockResponses(found(mt.T, "test.comments", comment), found(mt.T, "test.posts", post), affected(1), affected(1))

		app := testApp(me)
		app.Delete("/posts/:postId/comments/:id", DeleteComment)
		status, _ := doJSON(mt.T, app, "DELETE", "/posts/"+post.Id.Hex()+"/comments/"+comment.Id.Hex(), nil)

		require.Equal(mt, fiber.StatusOK, status)
		assert.Equal(mt, []string{"find comments", "find posts", "delete comments", "update posts"}, commands(mt.GetAllStartedEvents()))
	})

	mt.Run("stranger is refused", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		post := models.Post{Id: primitive.NewObjectID(), Author: primitive.NewObjectID()}
		comment := models.Comment{Id: primitive.NewObjectID(), Post: post.Id, Author: primitive.NewObjectID()}
		mt.AddMockResponses(found(mt.T, "test.comments", comment), found(mt.T, "test.posts", post))

		app := testApp(me)
		app.Delete("/posts/:postId/comments/:id", DeleteComment)
		status, _ := doJSON(mt.T, app, "DELETE", "/posts/"+post.Id.Hex()+"/comments/"+comment.Id.Hex(), nil)

		assert.Equal(mt, fiber.StatusForbidden, status)
		assert.Equal(mt, []string{"find comments", "find posts"}, commands(mt.GetAllStartedEvents()))
	})
}

func TestCompleteTaskSetsMatchedTask(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	open := models.Task{Id: primitive.NewObjectID(), Description: "Tour"}

	mt.Run("open task", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		plan := models.LearningPlan{Id: primitive.NewObjectID(), Owner: me.Id, Topic: "Go", Tasks: []models.Task{open}}
		done := plan
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		done.Tasks = []models.Task{{Id: open.Id, Description: "Tour", Completed: true, CompletedAt: &at}}
		mt.AddMockResponses(found(mt.T, "test.learning_plans", plan), modified(mt.T, done))

		app := testApp(me)
		app.Post("/tasks/:taskId/complete", CompleteTask)
		status, body := doJSON(mt.T, app, "POST", "/tasks/"+open.Id.Hex()+"/complete", nil)

		require.Equal(mt, fiber.StatusOK, status)
		assert.Equal(mt, open.Id.Hex(), body["id"])
		assert.Equal(mt, true, body["completed"])

		events := mt.GetAllStartedEvents()
		require.Equal(mt, []string{"find learning_plans", "findAndModify learning_plans"}, commands(events))
		assert.Equal(mt, open.Id, events[1].Command.Lookup("query", "tasks._id").ObjectID())
		assert.True(mt, events[1].Command.Lookup("update", "$set", "tasks.$.completed").Boolean())
	})

	mt.Run("already completed", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		closed := models.Task{Id: open.Id, Description: "Tour", Completed: true, CompletedAt: &at}
		plan := models.LearningPlan{Id: primitive.NewObjectID(), Owner: me.Id, Tasks: []models.Task{closed}}
		mt.AddMockResponses(found(mt.T, "test.learning_plans", plan))

		app := testApp(me)
		app.Post("/tasks/:taskId/complete", CompleteTask)
		status, body := doJSON(mt.T, app, "POST", "/tasks/"+open.Id.Hex()+"/complete", nil)

		require.Equal(mt, fiber.StatusOK, status)
		assert.Equal(mt, true, body["completed"])
		assert.Equal(mt, []string{"find learning_plans"}, commands(mt.GetAllStartedEvents()))
	})

	mt.Run("someone else's plan", func(mt *mtest.T) {
		useMockDB(mt)
		plan := models.LearningPlan{Id: primitive.NewObjectID(), Owner: primitive.NewObjectID(), Tasks: []models.Task{open}}
		mt.AddMockResponses(found(mt.T, "test.learning_plans", plan))

		app := testApp(models.User{Id: primitive.NewObjectID()})
		app.Post("/tasks/:taskId/complete", CompleteTask)
		status, _ := doJSON(mt.T, app, "POST", "/tasks/"+open.Id.Hex()+"/complete", nil)

		assert.Equal(mt, fiber.StatusForbidden, status)
	})
}

func TestExtendLearningPlanRespondsOrderedByEndDate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("extend", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID(), Name: "Ada"}
		day := func(m time.Month, d int) *time.Time {
			v := time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
			return &v
		}
		created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		target := models.LearningPlan{Id: primitive.NewObjectID(), Owner: me.Id, Topic: "Go", EndDate: day(6, 1), CreatedAt: created.Add(2 * time.Hour)}
		extended := target
		extended.EndDate, extended.Extended = day(8, 1), true
		sooner := models.LearningPlan{Id: primitive.NewObjectID(), Owner: me.Id, Topic: "Rust", EndDate: day(7, 1), CreatedAt: created.Add(time.Hour)}
		open := models.LearningPlan{Id: primitive.NewObjectID(), Owner: me.Id, Topic: "Zig", CreatedAt: created}

		mt.AddMockResponses(
			found(mt.T, "test.learning_plans", target),
			affected(1),
			found(mt.T, "test.learning_plans", extended, sooner, open),
			found(mt.T, "test.users", me),
		)

		app := testApp(me)
		app.Post("/plans/:id/extend", ExtendLearningPlan)
		req := httptest.NewRequest("POST", "/plans/"+target.Id.Hex()+"/extend", strings.NewReader(`{"endDate":"2024-08-01"}`))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req, -1)
		require.NoError(mt, err)
		require.Equal(mt, fiber.StatusOK, res.StatusCode)

		var plans []models.LearningPlanDto
		require.NoError(mt, json.NewDecoder(res.Body).Decode(&plans))
		topics := make([]string, 0, len(plans))
		for _, p := range plans {
			topics = append(topics, p.Topic)
			assert.Equal(mt, "Ada", p.Owner.Name)
		}
		assert.Equal(mt, []string{"Rust", "Go", "Zig"}, topics)
		assert.True(mt, plans[1].Extended)

		events := mt.GetAllStartedEvents()
		require.Equal(mt, []string{"find learning_plans", "update learning_plans", "find learning_plans", "find users"}, commands(events))
		set := events[1].Command.Lookup("updates", "0", "u", "$set")
		assert.True(mt, set.Document().Lookup("extended").Boolean())
		assert.True(mt, day(8, 1).Equal(set.Document().Lookup("endDate").Time()))
	})

	mt.Run("end before start", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
		plan := models.LearningPlan{Id: primitive.NewObjectID(), Owner: me.Id, StartDate: &start}
		mt.AddMockResponses(found(mt.T, "test.learning_plans", plan))

		app := testApp(me)
		app.Post("/plans/:id/extend", ExtendLearningPlan)
		status, body := doJSON(mt.T, app, "POST", "/plans/"+plan.Id.Hex()+"/extend", map[string]string{"endDate": "2024-08-01"})

		assert.Equal(mt, fiber.StatusBadRequest, status)
		assert.Equal(mt, "endDate must not be before startDate", body["message"])
		assert.Len(mt, mt.GetAllStartedEvents(), 1)
	})
}

func TestDeletePostCascadesToCommentsAndShares(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("cascade", func(mt *mtest.T) {
		useMockDB(mt)
		me := models.User{Id: primitive.NewObjectID()}
		post := models.Post{Id: primitive.NewObjectID(), Author: me.Id, Content: "bye"}
		mt.AddMockResponses(found(mt.T, "test.posts", post), affected(1), affected(2), affected(1), affected(3))

		app := testApp(me)
		app.Delete("/posts/:id", DeletePost)
		status, _ := doJSON(mt.T, app, "DELETE", "/posts/"+post.Id.Hex(), nil)

		require.Equal(mt, fiber.StatusOK, status)
		events := mt.GetAllStartedEvents()
		require.Equal(mt, []string{
			"find posts",
			"delete posts",
			"delete comments",
			"delete shared_posts",
			"delete notifications",
		}, commands(events))
		assert.Equal(mt, post.Id, events[2].Command.Lookup("deletes", "0", "q", "post").ObjectID())
		assert.Equal(mt, post.Id, events[3].Command.Lookup("deletes", "0", "q", "post").ObjectID())
		assert.Equal(mt, post.Id, events[4].Command.Lookup("deletes", "0", "q", "relatedPost").ObjectID())
	})
}
