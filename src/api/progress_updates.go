package api

import (
	"context"
	"net/http"

	"github.com/theleywin/SkillShare/src/models"
)

func (c *Client) ProgressUpdates(ctx context.Context) ([]models.ProgressUpdateDto, error) {
	return execute[[]models.ProgressUpdateDto](ctx, c, "list progress updates", c.newRequest(ctx), http.MethodGet, "/api/progress-updates")
}

func (c *Client) CreateProgressUpdate(ctx context.Context, req models.ProgressUpdateRequest) (*models.ProgressUpdateDto, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return execute[*models.ProgressUpdateDto](ctx, c, "create progress update", c.newRequest(ctx).SetBody(req), http.MethodPost, "/api/progress-updates")
}

func (c *Client) UpdateProgressUpdate(ctx context.Context, id string, req models.ProgressUpdateRequest) (*models.ProgressUpdateDto, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return execute[*models.ProgressUpdateDto](ctx, c, "update progress update", c.newRequest(ctx).SetBody(req), http.MethodPut, "/api/progress-updates/"+escape(id))
}

func (c *Client) DeleteProgressUpdate(ctx context.Context, id string) error {
	return send(ctx, c, "delete progress update", c.newRequest(ctx), http.MethodDelete, "/api/progress-updates/"+escape(id))
}
