package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeShare   NotificationType = "share"
)

type Notification struct {
	Id          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Recipient   primitive.ObjectID `json:"recipient" bson:"recipient"`
	Type        NotificationType   `json:"type" bson:"type"`
	RelatedUser primitive.ObjectID `json:"relatedUser,omitempty" bson:"relatedUser,omitempty"`
	RelatedPost primitive.ObjectID `json:"relatedPost,omitempty" bson:"relatedPost,omitempty"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type NotificationDto struct {
	ID            string           `json:"id"`
	Type          NotificationType `json:"type"`
	Message       string           `json:"message"`
	Read          bool             `json:"read"`
	RelatedUser   *UserDto         `json:"relatedUser,omitempty"`
	RelatedPostID string           `json:"relatedPostId,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// NotificationMessage renders the text shown for a notification.
func NotificationMessage(kind NotificationType, actor string) string {
	if actor == "" {
		actor = "Someone"
	}
	switch kind {
	case NotificationTypeLike:
		return actor + " liked your post"
	case NotificationTypeComment:
		return actor + " commented on your post"
	case NotificationTypeFollow:
		return actor + " started following you"
	case NotificationTypeShare:
		return actor + " shared your post"
	}
	return actor + " interacted with you"
}

func (n Notification) ToDto(related *UserDto) NotificationDto {
	actor := ""
	if related != nil {
		actor = related.Name
	}
	dto := NotificationDto{
		ID:          n.Id.Hex(),
		Type:        n.Type,
		Message:     NotificationMessage(n.Type, actor),
		Read:        n.Read,
		RelatedUser: related,
		CreatedAt:   n.CreatedAt,
	}
	if !n.RelatedPost.IsZero() {
		dto.RelatedPostID = n.RelatedPost.Hex()
	}
	return dto
}
