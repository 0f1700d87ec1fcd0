package reconcile

import (
	"context"

	"github.com/theleywin/SkillShare/src/models"
)

func commentID(c models.CommentDto) string { return c.ID }

// Comments lists the comments of one post, oldest first. When a parent feed
// is attached, acknowledged adds and deletes move its comment count.
type Comments struct {
	*List[models.CommentDto]
	client Client
	viewer Viewer
	postID string
	parent *Posts
}

func NewComments(client Client, viewer Viewer, postID string, parent *Posts) *Comments {
	return &Comments{
		List:   newList("comment", commentID, nil),
		client: client,
		viewer: viewer,
		postID: postID,
		parent: parent,
	}
}

func (c *Comments) PostID() string {
	return c.postID
}

func (c *Comments) Load(ctx context.Context) error {
	return c.load(ctx, func(ctx context.Context) ([]models.CommentDto, error) {
		return c.client.Comments(ctx, c.postID)
	})
}

func (c *Comments) Create(ctx context.Context, content string) (models.CommentDto, error) {
	result, err := c.mutate(ctx, request{kind: "create"},
		func(ctx context.Context) (any, error) {
			comment, err := c.client.CreateComment(ctx, c.postID, content)
			return deref("create comment", comment, err)
		},
		func(items []models.CommentDto, result any) []models.CommentDto {
			return upsert(items, result.(models.CommentDto), commentID)
		})
	// The parent outlives this view; it counts every acknowledged comment.
	if acknowledged(result, err) && c.parent != nil {
		c.parent.CommentAdded(c.postID)
	}
	if err != nil {
		return models.CommentDto{}, err
	}
	return result.(models.CommentDto), nil
}

func (c *Comments) Update(ctx context.Context, id, content string) (models.CommentDto, error) {
	result, err := c.mutate(ctx, request{kind: KindUpdate, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			comment, err := c.client.UpdateComment(ctx, c.postID, id, content)
			return deref("update comment", comment, err)
		},
		func(items []models.CommentDto, result any) []models.CommentDto {
			updated := result.(models.CommentDto)
			return replace(items, id, func(models.CommentDto) models.CommentDto { return updated }, commentID)
		})
	if err != nil {
		return models.CommentDto{}, err
	}
	return result.(models.CommentDto), nil
}

func (c *Comments) Remove(ctx context.Context, id string) error {
	result, err := c.mutate(ctx, request{kind: KindRemove, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			if err := c.client.DeleteComment(ctx, c.postID, id); err != nil {
				return nil, err
			}
			return id, nil
		},
		func(items []models.CommentDto, _ any) []models.CommentDto {
			return without(items, id, commentID)
		})
	if acknowledged(result, err) && c.parent != nil {
		c.parent.CommentRemoved(c.postID)
	}
	return err
}

// CanModify reports whether the viewer may edit the comment: only its
// author can.
func (c *Comments) CanModify(id string) bool {
	comment, ok := c.Get(id)
	viewer := c.viewer.UserID()
	return ok && viewer != "" && comment.User.ID == viewer
}

// CanRemove also lets the author of the post remove comments under it.
func (c *Comments) CanRemove(id string) bool {
	if c.CanModify(id) {
		return true
	}
	if c.parent == nil || !c.Has(id) {
		return false
	}
	return c.parent.CanModify(c.postID)
}

func (c *Comments) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}
