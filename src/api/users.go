package api

import (
	"context"
	"io"
	"net/http"

	"github.com/theleywin/SkillShare/src/models"
)

func (c *Client) User(ctx context.Context, id string) (*models.UserDto, error) {
	return execute[*models.UserDto](ctx, c, "get user", c.newRequest(ctx), http.MethodGet, "/api/users/"+escape(id))
}

func (c *Client) UpdateProfile(ctx context.Context, id string, req models.ProfileRequest) (*models.UserDto, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	return execute[*models.UserDto](ctx, c, "update profile", c.newRequest(ctx).SetBody(req), http.MethodPatch, "/api/users/"+escape(id))
}

func (c *Client) UploadProfilePhoto(ctx context.Context, id, filename string, body io.Reader) (*models.UserDto, error) {
	req := c.newRequest(ctx).SetFileReader("file", filename, body)
	return execute[*models.UserDto](ctx, c, "upload profile photo", req, http.MethodPost, "/api/users/"+escape(id)+"/photo")
}

func (c *Client) UserPosts(ctx context.Context, id string) ([]models.PostDto, error) {
	return execute[[]models.PostDto](ctx, c, "user posts", c.newRequest(ctx), http.MethodGet, "/api/users/"+escape(id)+"/posts")
}

func (c *Client) Following(ctx context.Context, id string) ([]models.UserDto, error) {
	return execute[[]models.UserDto](ctx, c, "following", c.newRequest(ctx), http.MethodGet, "/api/users/"+escape(id)+"/following")
}

func (c *Client) Followers(ctx context.Context, id string) ([]models.UserDto, error) {
	return execute[[]models.UserDto](ctx, c, "followers", c.newRequest(ctx), http.MethodGet, "/api/users/"+escape(id)+"/followers")
}

func (c *Client) Follow(ctx context.Context, id, followID string) (*models.FollowResult, error) {
	return execute[*models.FollowResult](ctx, c, "follow", c.newRequest(ctx), http.MethodPost, followPath(id, followID))
}

func (c *Client) Unfollow(ctx context.Context, id, followID string) (*models.FollowResult, error) {
	return execute[*models.FollowResult](ctx, c, "unfollow", c.newRequest(ctx), http.MethodDelete, followPath(id, followID))
}

// IsFollowing maps the backend's 200/404 answer to a boolean.
func (c *Client) IsFollowing(ctx context.Context, id, followID string) (bool, error) {
	path := "/api/users/" + escape(id) + "/following/" + escape(followID)
	err := send(ctx, c, "is following", c.newRequest(ctx), http.MethodGet, path)
	if StatusCode(err) == http.StatusNotFound {
		return false, nil
	}
	return err == nil, err
}

func followPath(id, followID string) string {
	return "/api/users/" + escape(id) + "/follow/" + escape(followID)
}
