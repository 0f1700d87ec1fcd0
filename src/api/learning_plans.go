package api

import (
	"context"
	"net/http"
	"time"

	"github.com/theleywin/SkillShare/src/models"
)

func (c *Client) LearningPlans(ctx context.Context) ([]models.LearningPlanDto, error) {
	return execute[[]models.LearningPlanDto](ctx, c, "list learning plans", c.newRequest(ctx), http.MethodGet, "/api/learning-plans")
}

func (c *Client) MyLearningPlans(ctx context.Context) ([]models.LearningPlanDto, error) {
	return execute[[]models.LearningPlanDto](ctx, c, "my learning plans", c.newRequest(ctx), http.MethodGet, "/api/learning-plans/my-plans")
}

func (c *Client) CreateLearningPlan(ctx context.Context, req models.LearningPlanRequest) (*models.LearningPlanDto, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return execute[*models.LearningPlanDto](ctx, c, "create learning plan", c.newRequest(ctx).SetBody(req), http.MethodPost, "/api/learning-plans")
}

func (c *Client) UpdateLearningPlan(ctx context.Context, id string, req models.LearningPlanRequest) (*models.LearningPlanDto, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return execute[*models.LearningPlanDto](ctx, c, "update learning plan", c.newRequest(ctx).SetBody(req), http.MethodPut, "/api/learning-plans/"+escape(id))
}

func (c *Client) DeleteLearningPlan(ctx context.Context, id string) error {
	return send(ctx, c, "delete learning plan", c.newRequest(ctx), http.MethodDelete, "/api/learning-plans/"+escape(id))
}

// ExtendLearningPlan moves the end date of a plan. The backend answers with
// the caller's plans in their new order.
func (c *Client) ExtendLearningPlan(ctx context.Context, id string, endDate time.Time) ([]models.LearningPlanDto, error) {
	body := models.ExtendRequest{EndDate: endDate.UTC().Format(time.RFC3339)}
	return execute[[]models.LearningPlanDto](ctx, c, "extend learning plan", c.newRequest(ctx).SetBody(body), http.MethodPost, "/api/learning-plans/"+escape(id)+"/extend")
}

func (c *Client) CompleteTask(ctx context.Context, taskID string) (*models.TaskDto, error) {
	return execute[*models.TaskDto](ctx, c, "complete task", c.newRequest(ctx), http.MethodPost, "/api/learning-plans/tasks/"+escape(taskID)+"/complete")
}

// SuggestedExtension is the end date offered when extending a plan: one week
// after its current end, or after now when it has none.
func SuggestedExtension(plan models.LearningPlanDto, now time.Time) time.Time {
	if plan.EndDate != nil && plan.EndDate.After(now) {
		return plan.EndDate.AddDate(0, 0, 7)
	}
	return now.AddDate(0, 0, 7)
}
