package reconcile

import (
	"context"

	"github.com/theleywin/SkillShare/src/models"
)

func sharedID(s models.SharedPostDto) string { return s.ID }

func cloneShared(s models.SharedPostDto) models.SharedPostDto {
	s.OriginalPost = clonePost(s.OriginalPost)
	return s
}

// SharedPosts lists reposts made by one user. Removing a share never touches
// the original post.
type SharedPosts struct {
	*List[models.SharedPostDto]
	client Client
	fetch  func(context.Context) ([]models.SharedPostDto, error)
}

// NewMySharedPosts lists the viewer's own shares.
func NewMySharedPosts(client Client) *SharedPosts {
	return &SharedPosts{
		List:   newList("shared post", sharedID, cloneShared),
		client: client,
		fetch:  client.MySharedPosts,
	}
}

func NewUserSharedPosts(client Client, userID string) *SharedPosts {
	return &SharedPosts{
		List:   newList("shared post", sharedID, cloneShared),
		client: client,
		fetch: func(ctx context.Context) ([]models.SharedPostDto, error) {
			return client.UserSharedPosts(ctx, userID)
		},
	}
}

func (s *SharedPosts) Load(ctx context.Context) error {
	return s.load(ctx, s.fetch)
}

// Share reposts postID and appends the new share.
func (s *SharedPosts) Share(ctx context.Context, postID, comment string) (models.SharedPostDto, error) {
	result, err := s.mutate(ctx, request{kind: "create"},
		func(ctx context.Context) (any, error) {
			shared, err := s.client.SharePost(ctx, postID, comment)
			return deref("share post", shared, err)
		},
		func(items []models.SharedPostDto, result any) []models.SharedPostDto {
			return upsert(items, result.(models.SharedPostDto), sharedID)
		})
	if err != nil {
		return models.SharedPostDto{}, err
	}
	return result.(models.SharedPostDto), nil
}

func (s *SharedPosts) Remove(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, request{kind: KindRemove, id: id, mustExist: true},
		func(ctx context.Context) (any, error) {
			return nil, s.client.DeleteSharedPost(ctx, id)
		},
		func(items []models.SharedPostDto, _ any) []models.SharedPostDto {
			return without(items, id, sharedID)
		})
	return err
}
