package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/theleywin/SkillShare/src/models"
)

// MediaFile is one attachment of a post.
type MediaFile struct {
	Name   string
	Reader io.Reader
}

// PostInput is the editable part of a post. On update an empty Content keeps
// the current text and an empty Media keeps the current attachments.
type PostInput struct {
	Content string
	Media   []MediaFile
}

func (c *Client) Posts(ctx context.Context) ([]models.PostDto, error) {
	return execute[[]models.PostDto](ctx, c, "list posts", c.newRequest(ctx), http.MethodGet, "/api/posts")
}

func (c *Client) Post(ctx context.Context, id string) (*models.PostDto, error) {
	return execute[*models.PostDto](ctx, c, "get post", c.newRequest(ctx), http.MethodGet, "/api/posts/"+escape(id))
}

func (c *Client) CreatePost(ctx context.Context, in PostInput) (*models.PostDto, error) {
	if strings.TrimSpace(in.Content) == "" && len(in.Media) == 0 {
		return nil, &ValidationError{Message: "content is required"}
	}
	return execute[*models.PostDto](ctx, c, "create post", c.postForm(ctx, in), http.MethodPost, "/api/posts")
}

func (c *Client) UpdatePost(ctx context.Context, id string, in PostInput) (*models.PostDto, error) {
	return execute[*models.PostDto](ctx, c, "update post", c.postForm(ctx, in), http.MethodPut, "/api/posts/"+escape(id))
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return send(ctx, c, "delete post", c.newRequest(ctx), http.MethodDelete, "/api/posts/"+escape(id))
}

func (c *Client) ToggleLike(ctx context.Context, id string) (*models.LikeResult, error) {
	return execute[*models.LikeResult](ctx, c, "toggle like", c.newRequest(ctx), http.MethodPost, "/api/posts/"+escape(id)+"/like")
}

func (c *Client) SharePost(ctx context.Context, id, comment string) (*models.SharedPostDto, error) {
	body := models.ShareRequest{ShareComment: comment}
	if err := Validate(body); err != nil {
		return nil, err
	}
	return execute[*models.SharedPostDto](ctx, c, "share post", c.newRequest(ctx).SetBody(body), http.MethodPost, "/api/posts/"+escape(id)+"/share")
}

func (c *Client) MySharedPosts(ctx context.Context) ([]models.SharedPostDto, error) {
	return execute[[]models.SharedPostDto](ctx, c, "my shared posts", c.newRequest(ctx), http.MethodGet, "/api/posts/shared/me")
}

func (c *Client) UserSharedPosts(ctx context.Context, userID string) ([]models.SharedPostDto, error) {
	return execute[[]models.SharedPostDto](ctx, c, "user shared posts", c.newRequest(ctx), http.MethodGet, "/api/posts/shared/user/"+escape(userID))
}

func (c *Client) DeleteSharedPost(ctx context.Context, id string) error {
	return send(ctx, c, "delete shared post", c.newRequest(ctx), http.MethodDelete, "/api/posts/shared/"+escape(id))
}

func (c *Client) Comments(ctx context.Context, postID string) ([]models.CommentDto, error) {
	return execute[[]models.CommentDto](ctx, c, "list comments", c.newRequest(ctx), http.MethodGet, commentsPath(postID))
}

func (c *Client) CreateComment(ctx context.Context, postID, content string) (*models.CommentDto, error) {
	body := models.CommentRequest{Content: content}
	if err := Validate(body); err != nil {
		return nil, err
	}
	return execute[*models.CommentDto](ctx, c, "create comment", c.newRequest(ctx).SetBody(body), http.MethodPost, commentsPath(postID))
}

func (c *Client) UpdateComment(ctx context.Context, postID, id, content string) (*models.CommentDto, error) {
	body := models.CommentRequest{Content: content}
	if err := Validate(body); err != nil {
		return nil, err
	}
	return execute[*models.CommentDto](ctx, c, "update comment", c.newRequest(ctx).SetBody(body), http.MethodPut, commentsPath(postID)+"/"+escape(id))
}

func (c *Client) DeleteComment(ctx context.Context, postID, id string) error {
	return send(ctx, c, "delete comment", c.newRequest(ctx), http.MethodDelete, commentsPath(postID)+"/"+escape(id))
}

func (c *Client) postForm(ctx context.Context, in PostInput) *resty.Request {
	req := c.newRequest(ctx).SetFormData(map[string]string{"content": in.Content})
	for _, file := range in.Media {
		req.SetFileReader("mediaFiles", file.Name, file.Reader)
	}
	return req
}

func commentsPath(postID string) string {
	return "/api/posts/" + escape(postID) + "/comments"
}
