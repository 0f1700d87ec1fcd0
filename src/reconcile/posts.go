package reconcile

import (
	"context"
	"strings"

	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/models"
)

// Toggle kinds and operation names reported by InFlight.
const (
	KindUpdate   = "update"
	KindRemove   = "remove"
	KindLike     = "like"
	KindShare    = "share"
	KindFollow   = "follow"
	KindExtend   = "extend"
	KindComplete = "complete"
)

func postID(p models.PostDto) string { return p.ID }

func clonePost(p models.PostDto) models.PostDto {
	p.MediaURLs = append([]string{}, p.MediaURLs...)
	return p
}

// Posts is a list of posts: the feed or one user's posts.
type Posts struct {
	*List[models.PostDto]
	client Client
	viewer Viewer
	fetch  func(context.Context) ([]models.PostDto, error)
}

// NewFeed lists every post, newest first.
func NewFeed(client Client, viewer Viewer) *Posts {
	return &Posts{
		List:   newList("post", postID, clonePost),
		client: client,
		viewer: viewer,
		fetch:  client.Posts,
	}
}

// NewUserPosts lists the posts written by userID.
func NewUserPosts(client Client, viewer Viewer, userID string) *Posts {
	return &Posts{
		List:   newList("post", postID, clonePost),
		client: client,
		viewer: viewer,
		fetch: func(ctx context.Context) ([]models.PostDto, error) {
			return client.UserPosts(ctx, userID)
		},
	}
}

func (p *Posts) Load(ctx context.Context) error {
	return p.load(ctx, p.fetch)
}

// Create publishes a post and appends it once the backend accepted it.
func (p *Posts) Create(ctx context.Context, in api.PostInput) (models.PostDto, error) {
	result, err := p.mutate(ctx, request{kind: "create"},
		func(ctx context.Context) (any, error) {
			post, err := p.client.CreatePost(ctx, in)
			return deref("create post", post, err)
		},
		func(items []models.PostDto, result any) []models.PostDto {
			return upsert(items, result.(models.PostDto), postID)
		})
	return asPost(result, err)
}

// Update edits a post the list holds. Empty fields of in keep the current
// values on the backend.
func (p *Posts) Update(ctx context.Context, id string, in api.PostInput) (models.PostDto, error) {
	result, err := p.mutate(ctx, request{kind: KindUpdate, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			post, err := p.client.UpdatePost(ctx, id, in)
			return deref("update post", post, err)
		},
		func(items []models.PostDto, result any) []models.PostDto {
			updated := result.(models.PostDto)
			return replace(items, id, func(models.PostDto) models.PostDto { return updated }, postID)
		})
	return asPost(result, err)
}

func (p *Posts) Remove(ctx context.Context, id string) error {
	_, err := p.mutate(ctx, request{kind: KindRemove, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			return nil, p.client.DeletePost(ctx, id)
		},
		func(items []models.PostDto, _ any) []models.PostDto {
			return without(items, id, postID)
		})
	return err
}

// ToggleLike flips the viewer's like. Both the flag and the count come from
// the backend's answer.
func (p *Posts) ToggleLike(ctx context.Context, id string) (models.LikeResult, error) {
	result, err := p.toggle(ctx, request{kind: KindLike, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			like, err := p.client.ToggleLike(ctx, id)
			return deref("toggle like", like, err)
		},
		func(items []models.PostDto, result any) []models.PostDto {
			like := result.(models.LikeResult)
			return replace(items, id, func(post models.PostDto) models.PostDto {
				post.Liked, post.Likes = like.Liked, like.LikeCount
				return post
			}, postID)
		})
	if err != nil {
		return models.LikeResult{}, err
	}
	return result.(models.LikeResult), nil
}

// Share reposts a post the list holds. The list itself does not change.
func (p *Posts) Share(ctx context.Context, id, comment string) (models.SharedPostDto, error) {
	result, err := p.mutate(ctx, request{kind: KindShare, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			shared, err := p.client.SharePost(ctx, id, comment)
			return deref("share post", shared, err)
		},
		func(items []models.PostDto, _ any) []models.PostDto { return items })
	if err != nil {
		return models.SharedPostDto{}, err
	}
	return result.(models.SharedPostDto), nil
}

// Search filters the held posts by author name or content, ignoring case.
func (p *Posts) Search(query string) []models.PostDto {
	query = strings.ToLower(strings.TrimSpace(query))
	items := p.Items()
	if query == "" {
		return items
	}
	matches := []models.PostDto{}
	for _, post := range items {
		if strings.Contains(strings.ToLower(post.User.Name), query) ||
			strings.Contains(strings.ToLower(post.Content), query) {
			matches = append(matches, post)
		}
	}
	return matches
}

// CanModify reports whether the viewer wrote the post.
func (p *Posts) CanModify(id string) bool {
	post, ok := p.Get(id)
	viewer := p.viewer.UserID()
	return ok && viewer != "" && post.User.ID == viewer
}

// CommentAdded records a comment the backend acknowledged for postID.
func (p *Posts) CommentAdded(postID string) {
	p.patch(postID, func(post models.PostDto) models.PostDto {
		post.CommentCount++
		return post
	})
}

// CommentRemoved records a deleted comment. The count never drops below 0.
func (p *Posts) CommentRemoved(postID string) {
	p.patch(postID, func(post models.PostDto) models.PostDto {
		if post.CommentCount > 0 {
			post.CommentCount--
		}
		return post
	})
}

func asPost(result any, err error) (models.PostDto, error) {
	if err != nil {
		return models.PostDto{}, err
	}
	return result.(models.PostDto), nil
}
