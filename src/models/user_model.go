package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Email           string               `json:"email" bson:"email"`
	Password        string               `json:"-" bson:"password,omitempty"`
	Bio             string               `json:"bio" bson:"bio"`
	ProfilePhotoURL string               `json:"profilePhotoUrl" bson:"profilePhotoUrl"`
	Provider        string               `json:"provider" bson:"provider"`
	ProviderID      string               `json:"-" bson:"providerId,omitempty"`
	Following       []primitive.ObjectID `json:"following" bson:"following"`
	Followers       []primitive.ObjectID `json:"followers" bson:"followers"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserDto is the public shape of a user. Email is only filled for the
// caller's own account.
type UserDto struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`
	IsFollowing     bool   `json:"isFollowing,omitempty"`
	FollowerCount   int    `json:"followerCount"`
	FollowingCount  int    `json:"followingCount"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,notblank,max=80"`
	Bio  *string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// FollowResult is the authoritative state of a follow edge after a toggle.
type FollowResult struct {
	Following     bool `json:"following"`
	FollowerCount int  `json:"followerCount"`
}

// ToDto converts a stored user. viewer may be nil for anonymous reads.
func (u User) ToDto(viewer *User) UserDto {
	dto := UserDto{
		ID:              u.Id.Hex(),
		Name:            u.Name,
		Bio:             u.Bio,
		ProfilePhotoURL: u.ProfilePhotoURL,
		FollowerCount:   len(u.Followers),
		FollowingCount:  len(u.Following),
	}
	if viewer == nil {
		return dto
	}
	if viewer.Id == u.Id {
		dto.Email = u.Email
		return dto
	}
	for _, id := range viewer.Following {
		if id == u.Id {
			dto.IsFollowing = true
			break
		}
	}
	return dto
}
