package controllers

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/lib"
	"github.com/theleywin/SkillShare/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetUserProfile returns the public profile of a user
func GetUserProfile(c *fiber.Ctx) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	viewer := currentUser(c)

	user, err := lib.FindUserByID(c.Context(), userID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "User not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching user")
	}
	return c.Status(fiber.StatusOK).JSON(user.ToDto(&viewer))
}

// UpdateProfile updates the name and bio of the authenticated user
func UpdateProfile(c *fiber.Ctx) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	user := currentUser(c)
	if userID != user.Id {
		return forbidden(c, "You can only update your own profile")
	}

	var req models.ProfileRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		set["bio"] = strings.TrimSpace(*req.Bio)
	}

	return updateUser(c, user.Id, set)
}

// UploadProfilePhoto replaces the profile photo of the authenticated user
func UploadProfilePhoto(c *fiber.Ctx) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	user := currentUser(c)
	if userID != user.Id {
		return forbidden(c, "You can only update your own profile")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "A file is required")
	}

	urls, err := saveUploads(c.Context(), []*multipart.FileHeader{header})
	if err == errUnsupportedMedia {
		return badRequest(c, "Unsupported media type")
	}
	if err != nil {
		return serverError(c, err, "Error storing profile photo")
	}

	previous := user.ProfilePhotoURL
	if err := updateUser(c, user.Id, bson.M{"profilePhotoUrl": urls[0], "updatedAt": time.Now()}); err != nil {
		return err
	}
	if c.Response().StatusCode() != fiber.StatusOK {
		discardUploads(c.Context(), urls)
		return nil
	}
	if previous != "" {
		discardUploads(c.Context(), []string{previous})
	}
	return nil
}

// GetFollowing lists the users followed by a user
func GetFollowing(c *fiber.Ctx) error {
	return respondFollowList(c, func(u *models.User) []primitive.ObjectID { return u.Following })
}

// GetFollowers lists the users following a user
func GetFollowers(c *fiber.Ctx) error {
	return respondFollowList(c, func(u *models.User) []primitive.ObjectID { return u.Followers })
}

// FollowUser makes the authenticated user follow another user
func FollowUser(c *fiber.Ctx) error {
	return toggleFollow(c, true)
}

// UnfollowUser removes a follow edge of the authenticated user
func UnfollowUser(c *fiber.Ctx) error {
	return toggleFollow(c, false)
}

// CheckFollowing answers 200 when the user follows followId and 404 otherwise
func CheckFollowing(c *fiber.Ctx) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	followID, ok := paramID(c, "followId")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}

	count, err := lib.DB.Collection("users").CountDocuments(c.Context(), bson.M{"_id": userID, "following": followID})
	if err != nil {
		return serverError(c, err, "Error checking follow status")
	}
	if count == 0 {
		return notFound(c, "Not following")
	}
	return c.Status(fiber.StatusOK).JSON(models.FollowResult{Following: true})
}

func toggleFollow(c *fiber.Ctx, follow bool) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	followID, ok := paramID(c, "followId")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	user := currentUser(c)
	if userID != user.Id {
		return forbidden(c, "You can only change your own follows")
	}
	if followID == user.Id {
		return badRequest(c, "You cannot follow yourself")
	}

	alreadyFollowing := false
	for _, id := range user.Following {
		if id == followID {
			alreadyFollowing = true
			break
		}
	}

	op := "$addToSet"
	if !follow {
		op = "$pull"
	}

	var target models.User
	err := lib.DB.Collection("users").FindOneAndUpdate(c.Context(),
		bson.M{"_id": followID},
		bson.M{op: bson.M{"followers": user.Id}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"password": 0}),
	).Decode(&target)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "User not found")
	}
	if err != nil {
		return serverError(c, err, "Error updating followers")
	}

	if _, err := lib.DB.Collection("users").UpdateByID(c.Context(), user.Id, bson.M{op: bson.M{"following": followID}}); err != nil {
		return serverError(c, err, "Error updating following")
	}

	if follow && !alreadyFollowing {
		notify(c.Context(), followID, user.Id, models.NotificationTypeFollow, primitive.NilObjectID)
	}

	return c.Status(fiber.StatusOK).JSON(models.FollowResult{
		Following:     follow,
		FollowerCount: len(target.Followers),
	})
}

func respondFollowList(c *fiber.Ctx, edges func(*models.User) []primitive.ObjectID) error {
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	viewer := currentUser(c)

	user, err := lib.FindUserByID(c.Context(), userID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "User not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching user")
	}

	ids := edges(user)
	users, err := lib.LoadUsers(c.Context(), ids)
	if err != nil {
		return serverError(c, err, "Error fetching users")
	}

	dtos := make([]models.UserDto, 0, len(ids))
	for _, id := range lib.UniqueIDs(ids) {
		if u, ok := users[id]; ok {
			dtos = append(dtos, u.ToDto(&viewer))
		}
	}
	return c.Status(fiber.StatusOK).JSON(dtos)
}

func updateUser(c *fiber.Ctx, userID primitive.ObjectID, set bson.M) error {
	var updated models.User
	err := lib.DB.Collection("users").FindOneAndUpdate(c.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"password": 0}),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "User not found")
	}
	if err != nil {
		return serverError(c, err, "Error updating user")
	}
	return c.Status(fiber.StatusOK).JSON(updated.ToDto(&updated))
}
