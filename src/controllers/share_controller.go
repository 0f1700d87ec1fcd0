package controllers

import (
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

// SharePost re-publishes a post on the authenticated user's profile
func SharePost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	var req models.ShareRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
	}
	user := currentUser(c)

	post, err := findPost(c.Context(), postID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Post not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching post")
	}

	shared := models.SharedPost{
		Post:         postID,
		Sharer:       user.Id,
		ShareComment: strings.TrimSpace(req.ShareComment),
		SharedAt:     time.Now(),
	}
	result, err := lib.DB.Collection("shared_posts").InsertOne(c.Context(), shared)
	if err != nil {
		return serverError(c, err, "Error sharing post")
	}
	shared.Id = result.InsertedID.(primitive.ObjectID)

	notify(c.Context(), post.Author, user.Id, models.NotificationTypeShare, postID)

	dtos, err := convertToSharedPostDtos(c, []models.SharedPost{shared}, &user)
	if err != nil {
		return serverError(c, err, "Error resolving shared post")
	}
	if len(dtos) == 0 {
		return notFound(c, "Post not found")
	}
	return c.Status(fiber.StatusCreated).JSON(dtos[0])
}

// GetMySharedPosts returns the posts shared by the authenticated user
func GetMySharedPosts(c *fiber.Ctx) error {
	user := currentUser(c)
	return respondSharedPosts(c, user.Id, &user)
}

// GetUserSharedPosts returns the posts shared by a user
func GetUserSharedPosts(c *fiber.Ctx) error {
	sharerID, ok := paramID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	user := currentUser(c)
	return respondSharedPosts(c, sharerID, &user)
}

// DeleteSharedPost removes a share of the authenticated user. The original
// post is left untouched.
func DeleteSharedPost(c *fiber.Ctx) error {
	sharedID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid shared post ID format")
	}
	user := currentUser(c)

	var shared models.SharedPost
	err := lib.DB.Collection("shared_posts").FindOne(c.Context(), bson.M{"_id": sharedID}).Decode(&shared)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Shared post not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching shared post")
	}
	if shared.Sharer != user.Id {
		return forbidden(c, "You are not authorized to delete this shared post")
	}

	if _, err := lib.DB.Collection("shared_posts").DeleteOne(c.Context(), bson.M{"_id": sharedID}); err != nil {
		return serverError(c, err, "Error deleting shared post")
	}
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Shared post deleted successfully"))
}

func respondSharedPosts(c *fiber.Ctx, sharerID primitive.ObjectID, viewer *models.User) error {
	cursor, err := lib.DB.Collection("shared_posts").Find(c.Context(),
		bson.M{"sharer": sharerID},
		options.Find().SetSort(bson.M{"sharedAt": -1}),
	)
	if err != nil {
		return serverError(c, err, "Error fetching shared posts")
	}
	defer cursor.Close(c.Context())

	shares := []models.SharedPost{}
	if err := cursor.All(c.Context(), &shares); err != nil {
		return serverError(c, err, "Error decoding shared posts")
	}

	dtos, err := convertToSharedPostDtos(c, shares, viewer)
	if err != nil {
		return serverError(c, err, "Error resolving shared posts")
	}
	return c.Status(fiber.StatusOK).JSON(dtos)
}

// convertToSharedPostDtos resolves the shared posts and every user involved.
// Shares whose post no longer exists are skipped.
func convertToSharedPostDtos(c *fiber.Ctx, shares []models.SharedPost, viewer *models.User) ([]models.SharedPostDto, error) {
	postIDs := make([]primitive.ObjectID, 0, len(shares))
	for _, share := range shares {
		postIDs = append(postIDs, share.Post)
	}

	posts, err := findPosts(c.Context(), bson.M{"_id": bson.M{"$in": lib.UniqueIDs(postIDs)}})
	if err != nil {
		return nil, err
	}
	postsByID := make(map[primitive.ObjectID]models.Post, len(posts))
	userIDs := make([]primitive.ObjectID, 0, len(posts)+len(shares))
	for _, post := range posts {
		postsByID[post.Id] = post
		userIDs = append(userIDs, post.Author)
	}
	for _, share := range shares {
		userIDs = append(userIDs, share.Sharer)
	}

	users, err := lib.LoadUsers(c.Context(), userIDs)
	if err != nil {
		return nil, err
	}

	dtos := make([]models.SharedPostDto, 0, len(shares))
	for _, share := range shares {
		post, ok := postsByID[share.Post]
		if !ok {
			continue
		}
		dtos = append(dtos, models.SharedPostDto{
			ID:           share.Id.Hex(),
			OriginalPost: post.ToDto(authorDto(users, post.Author, viewer), viewer.Id),
			ShareComment: share.ShareComment,
			Sharer:       authorDto(users, share.Sharer, viewer),
			SharedAt:     share.SharedAt,
		})
	}
	return dtos, nil
}
