package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Profile is everything a profile view shows about one user.
type Profile struct {
	UserID    string
	Posts     *Posts
	Following *Following
	Shared    *SharedPosts
}

func NewProfile(client Client, viewer Viewer, userID string) *Profile {
	return &Profile{
		UserID:    userID,
		Posts:     NewUserPosts(client, viewer, userID),
		Following: NewFollowing(client, viewer, userID),
		Shared:    NewUserSharedPosts(client, userID),
	}
}

// LoadProfile builds the profile of userID and loads its lists
// concurrently. Each list keeps its own state; the first failure is
// returned.
func LoadProfile(ctx context.Context, client Client, viewer Viewer, userID string) (*Profile, error) {
	profile := NewProfile(client, viewer, userID)
	return profile, profile.Load(ctx)
}

func (p *Profile) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return p.Posts.Load(ctx) })
	g.Go(func() error { return p.Following.Load(ctx) })
	g.Go(func() error { return p.Shared.Load(ctx) })
	return g.Wait()
}

func (p *Profile) Close() {
	p.Posts.Close()
	p.Following.Close()
	p.Shared.Close()
}
