package api

import (
	"context"
	"net/http"

	"github.com/theleywin/SkillShare/src/models"
)

func (c *Client) Notifications(ctx context.Context) ([]models.NotificationDto, error) {
	return execute[[]models.NotificationDto](ctx, c, "list notifications", c.newRequest(ctx), http.MethodGet, "/api/notifications")
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (*models.NotificationDto, error) {
	return execute[*models.NotificationDto](ctx, c, "mark notification read", c.newRequest(ctx), http.MethodPut, "/api/notifications/"+escape(id)+"/read")
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return send(ctx, c, "delete notification", c.newRequest(ctx), http.MethodDelete, "/api/notifications/"+escape(id))
}
