package reconcile

import (
	"context"
	"net/http"
	"time"

	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/models"
)

// Client is the backend surface the lists use. *api.Client implements it.
type Client interface {
	Posts(ctx context.Context) ([]models.PostDto, error)
	UserPosts(ctx context.Context, userID string) ([]models.PostDto, error)
	CreatePost(ctx context.Context, in api.PostInput) (*models.PostDto, error)
	UpdatePost(ctx context.Context, id string, in api.PostInput) (*models.PostDto, error)
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id string) (*models.LikeResult, error)
	SharePost(ctx context.Context, id, comment string) (*models.SharedPostDto, error)

	Comments(ctx context.Context, postID string) ([]models.CommentDto, error)
	CreateComment(ctx context.Context, postID, content string) (*models.CommentDto, error)
	UpdateComment(ctx context.Context, postID, id, content string) (*models.CommentDto, error)
	DeleteComment(ctx context.Context, postID, id string) error

	MySharedPosts(ctx context.Context) ([]models.SharedPostDto, error)
	UserSharedPosts(ctx context.Context, userID string) ([]models.SharedPostDto, error)
	DeleteSharedPost(ctx context.Context, id string) error

	LearningPlans(ctx context.Context) ([]models.LearningPlanDto, error)
	MyLearningPlans(ctx context.Context) ([]models.LearningPlanDto, error)
	CreateLearningPlan(ctx context.Context, req models.LearningPlanRequest) (*models.LearningPlanDto, error)
	UpdateLearningPlan(ctx context.Context, id string, req models.LearningPlanRequest) (*models.LearningPlanDto, error)
	DeleteLearningPlan(ctx context.Context, id string) error
	ExtendLearningPlan(ctx context.Context, id string, endDate time.Time) ([]models.LearningPlanDto, error)
	CompleteTask(ctx context.Context, taskID string) (*models.TaskDto, error)

	ProgressUpdates(ctx context.Context) ([]models.ProgressUpdateDto, error)
	CreateProgressUpdate(ctx context.Context, req models.ProgressUpdateRequest) (*models.ProgressUpdateDto, error)
	UpdateProgressUpdate(ctx context.Context, id string, req models.ProgressUpdateRequest) (*models.ProgressUpdateDto, error)
	DeleteProgressUpdate(ctx context.Context, id string) error

	Following(ctx context.Context, userID string) ([]models.UserDto, error)
	Followers(ctx context.Context, userID string) ([]models.UserDto, error)
	Follow(ctx context.Context, id, followID string) (*models.FollowResult, error)
	Unfollow(ctx context.Context, id, followID string) (*models.FollowResult, error)
	IsFollowing(ctx context.Context, id, followID string) (bool, error)
}

// Viewer identifies the user the lists act for. *session.Store implements
// it; an empty id means nobody is logged in.
type Viewer interface {
	UserID() string
}

// deref turns a pointer result into the value the lists hold, reporting an
// empty body as a server error.
func deref[T any](op string, v *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &api.ServerError{Op: op, Status: http.StatusOK, Message: "empty response"}
	}
	return *v, nil
}
