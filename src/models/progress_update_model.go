package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgressUpdate struct {
	Id        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Skill     string             `json:"skill" bson:"skill"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type ProgressUpdateDto struct {
	ID        string    `json:"id"`
	User      UserDto   `json:"user"`
	Skill     string    `json:"skill,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProgressUpdateRequest struct {
	Skill   string `json:"skill" validate:"max=120"`
	Content string `json:"content" validate:"required,notblank,max=4000"`
}

func (p ProgressUpdate) ToDto(author UserDto) ProgressUpdateDto {
	return ProgressUpdateDto{
		ID:        p.Id.Hex(),
		User:      author,
		Skill:     p.Skill,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
