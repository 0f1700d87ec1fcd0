package reconcile

import (
	"context"

	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/models"
)

func userIDOf(u models.UserDto) string { return u.ID }

// Following lists one side of a user's follow edges. When it is the viewer's
// own following list, toggles add and remove entries; otherwise they only
// refresh the follow flag of entries the list already shows.
type Following struct {
	*List[models.UserDto]
	client Client
	viewer Viewer
	userID string
	// followers marks the list of users following userID.
	followers bool
	fetch     func(context.Context) ([]models.UserDto, error)
}

// NewFollowing lists the users that userID follows.
func NewFollowing(client Client, viewer Viewer, userID string) *Following {
	return &Following{
		List:   newList("user", userIDOf, nil),
		client: client,
		viewer: viewer,
		userID: userID,
		fetch: func(ctx context.Context) ([]models.UserDto, error) {
			return client.Following(ctx, userID)
		},
	}
}

// NewFollowers lists the users following userID.
func NewFollowers(client Client, viewer Viewer, userID string) *Following {
	return &Following{
		List:   newList("user", userIDOf, nil),
		client: client,
		viewer: viewer,
		userID:    userID,
		followers: true,
		fetch: func(ctx context.Context) ([]models.UserDto, error) {
			return client.Followers(ctx, userID)
		},
	}
}

func (f *Following) Load(ctx context.Context) error {
	return f.load(ctx, f.fetch)
}

// IsFollowing reports whether the viewer follows target according to the
// list: presence in the viewer's own list, the follow flag otherwise.
func (f *Following) IsFollowing(target models.UserDto) bool {
	own := f.ownedBy(f.viewer.UserID())
	if held, ok := f.Get(target.ID); ok {
		return own || held.IsFollowing
	}
	return !own && target.IsFollowing
}

// ownedBy reports whether this is viewer's own following list. The viewer
// may log in or switch after the list was built.
func (f *Following) ownedBy(viewer string) bool {
	return !f.followers && viewer != "" && viewer == f.userID
}

// Toggle follows or unfollows target, depending on what the list shows now.
// The backend's answer decides the resulting state.
func (f *Following) Toggle(ctx context.Context, target models.UserDto) (models.FollowResult, error) {
	viewer := f.viewer.UserID()
	if viewer == "" {
		return models.FollowResult{}, &api.AuthenticationError{Message: "not logged in"}
	}
	if viewer == target.ID {
		return models.FollowResult{}, &api.ValidationError{Message: "You cannot follow yourself"}
	}
	own := f.ownedBy(viewer)
	following := f.IsFollowing(target)

	result, err := f.toggle(ctx, request{kind: KindFollow, id: target.ID},
		func(ctx context.Context) (any, error) {
			var res *models.FollowResult
			var err error
			if following {
				res, err = f.client.Unfollow(ctx, viewer, target.ID)
			} else {
				res, err = f.client.Follow(ctx, viewer, target.ID)
			}
			return deref("toggle follow", res, err)
		},
		func(items []models.UserDto, result any) []models.UserDto {
			res := result.(models.FollowResult)
			update := func(u models.UserDto) models.UserDto {
				u.IsFollowing, u.FollowerCount = res.Following, res.FollowerCount
				return u
			}
			if !own {
				return replace(items, target.ID, update, userIDOf)
			}
			if res.Following {
				return upsert(items, update(target), userIDOf)
			}
			return without(items, target.ID, userIDOf)
		})
	if err != nil {
		return models.FollowResult{}, err
	}
	return result.(models.FollowResult), nil
}

// CheckFollowing asks the backend whether the viewer follows targetID.
func (f *Following) CheckFollowing(ctx context.Context, targetID string) (bool, error) {
	viewer := f.viewer.UserID()
	if viewer == "" {
		return false, &api.AuthenticationError{Message: "not logged in"}
	}
	return f.client.IsFollowing(ctx, viewer, targetID)
}
