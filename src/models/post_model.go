package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	Id           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Author       primitive.ObjectID   `json:"author" bson:"author"`
	Content      string               `json:"content" bson:"content"`
	MediaURLs    []string             `json:"mediaUrls" bson:"mediaUrls"`
	LikedBy      []primitive.ObjectID `json:"likedBy" bson:"likedBy"`
	CommentCount int                  `json:"commentCount" bson:"commentCount"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

type PostDto struct {
	ID           string    `json:"id"`
	User         UserDto   `json:"user"`
	Content      string    `json:"content"`
	MediaURLs    []string  `json:"mediaUrls"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Likes        int       `json:"likes"`
	Liked        bool      `json:"liked"`
	CommentCount int       `json:"commentCount"`
}

// LikeResult carries both halves of the like state; clients set them together.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type SharedPost struct {
	Id           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Post         primitive.ObjectID `json:"post" bson:"post"`
	Sharer       primitive.ObjectID `json:"sharer" bson:"sharer"`
	ShareComment string             `json:"shareComment" bson:"shareComment"`
	SharedAt     time.Time          `json:"sharedAt" bson:"sharedAt"`
}

type SharedPostDto struct {
	ID           string    `json:"id"`
	OriginalPost PostDto   `json:"originalPost"`
	ShareComment string    `json:"shareComment,omitempty"`
	Sharer       UserDto   `json:"sharer"`
	SharedAt     time.Time `json:"sharedAt"`
}

type ShareRequest struct {
	ShareComment string `json:"shareComment" validate:"max=1000"`
}

// ToDto converts a stored post given its already resolved author.
func (p Post) ToDto(author UserDto, viewer primitive.ObjectID) PostDto {
	liked := false
	for _, id := range p.LikedBy {
		if id == viewer {
			liked = true
			break
		}
	}
	media := p.MediaURLs
	if media == nil {
		media = []string{}
	}
	return PostDto{
		ID:           p.Id.Hex(),
		User:         author,
		Content:      p.Content,
		MediaURLs:    media,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Likes:        len(p.LikedBy),
		Liked:        liked,
		CommentCount: p.CommentCount,
	}
}
