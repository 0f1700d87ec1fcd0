package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	Id        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Post      primitive.ObjectID `json:"post" bson:"post"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CommentDto struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	User      UserDto   `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

func (c Comment) ToDto(author UserDto) CommentDto {
	return CommentDto{
		ID:        c.Id.Hex(),
		PostID:    c.Post.Hex(),
		User:      author,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
