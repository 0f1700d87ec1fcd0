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

// GetComments returns the comments of a post, oldest first
func GetComments(c *fiber.Ctx) error {
	postID, ok := paramID(c, "postId")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	user := currentUser(c)

	cursor, err := lib.DB.Collection("comments").Find(c.Context(),
		bson.M{"post": postID},
		options.Find().SetSort(bson.M{"createdAt": 1}),
	)
	if err != nil {
		return serverError(c, err, "Error fetching comments")
	}
	defer cursor.Close(c.Context())

	comments := []models.Comment{}
	if err := cursor.All(c.Context(), &comments); err != nil {
		return serverError(c, err, "Error decoding comments")
	}

	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, comment := range comments {
		authorIDs = append(authorIDs, comment.Author)
	}
	authors, err := lib.LoadUsers(c.Context(), authorIDs)
	if err != nil {
		return serverError(c, err, "Error fetching comment authors")
	}

	dtos := make([]models.CommentDto, 0, len(comments))
	for _, comment := range comments {
		dtos = append(dtos, comment.ToDto(authorDto(authors, comment.Author, &user)))
	}
	return c.Status(fiber.StatusOK).JSON(dtos)
}

// CreateComment adds a comment to a post and notifies the post author
func CreateComment(c *fiber.Ctx) error {
	postID, ok := paramID(c, "postId")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	var req models.CommentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	user := currentUser(c)

	post, err := findPost(c.Context(), postID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Post not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching post")
	}

	now := time.Now()
	comment := models.Comment{
		Post:      postID,
		Author:    user.Id,
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := lib.DB.Collection("comments").InsertOne(c.Context(), comment)
	if err != nil {
		return serverError(c, err, "Error creating comment")
	}
	comment.Id = result.InsertedID.(primitive.ObjectID)

	if _, err := lib.DB.Collection("posts").UpdateByID(c.Context(), postID, bson.M{"$inc": bson.M{"commentCount": 1}}); err != nil {
		log.WithError(err).WithField("post", postID.Hex()).Error("Error updating comment count")
	}
	notify(c.Context(), post.Author, user.Id, models.NotificationTypeComment, postID)

	return c.Status(fiber.StatusCreated).JSON(comment.ToDto(user.ToDto(&user)))
}

// UpdateComment edits a comment of the authenticated user
func UpdateComment(c *fiber.Ctx) error {
	postID, ok := paramID(c, "postId")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid comment ID format")
	}
	var req models.CommentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	user := currentUser(c)

	var comment models.Comment
	err := lib.DB.Collection("comments").FindOne(c.Context(), bson.M{"_id": commentID, "post": postID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Comment not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching comment")
	}
	if comment.Author != user.Id {
		return forbidden(c, "You are not authorized to edit this comment")
	}

	var updated models.Comment
	err = lib.DB.Collection("comments").FindOneAndUpdate(c.Context(),
		bson.M{"_id": commentID},
		bson.M{"$set": bson.M{"content": strings.TrimSpace(req.Content), "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return serverError(c, err, "Error updating comment")
	}

	return c.Status(fiber.StatusOK).JSON(updated.ToDto(user.ToDto(&user)))
}

// DeleteComment removes a comment. The comment author and the post author
// may delete it.
func DeleteComment(c *fiber.Ctx) error {
	postID, ok := paramID(c, "postId")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid comment ID format")
	}
	user := currentUser(c)

	var comment models.Comment
	err := lib.DB.Collection("comments").FindOne(c.Context(), bson.M{"_id": commentID, "post": postID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Comment not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching comment")
	}

	if comment.Author != user.Id {
		post, err := findPost(c.Context(), postID)
		if err != nil && err != mongo.ErrNoDocuments {
			return serverError(c, err, "Error fetching post")
		}
		if post == nil || post.Author != user.Id {
			return forbidden(c, "You are not authorized to delete this comment")
		}
	}

	result, err := lib.DB.Collection("comments").DeleteOne(c.Context(), bson.M{"_id": commentID})
	if err != nil {
		return serverError(c, err, "Error deleting comment")
	}
	if result.DeletedCount == 0 {
		return notFound(c, "Comment not found")
	}

	_, err = lib.DB.Collection("posts").UpdateOne(c.Context(),
		bson.M{"_id": postID, "commentCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"commentCount": -1}},
	)
	if err != nil {
		log.WithError(err).WithField("post", postID.Hex()).Error("Error updating comment count")
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Comment deleted successfully"))
}
