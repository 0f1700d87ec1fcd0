package controllers

import (
	"context"
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

// GetFeedPosts returns every post, newest first
func GetFeedPosts(c *fiber.Ctx) error {
	user := currentUser(c)

	posts, err := findPosts(c.Context(), bson.M{})
	if err != nil {
		return serverError(c, err, "Error fetching posts")
	}

	dtos, err := convertToPostDtos(c.Context(), posts, &user)
	if err != nil {
		return serverError(c, err, "Error fetching post authors")
	}
	return c.Status(fiber.StatusOK).JSON(dtos)
}

// GetUserPosts returns the posts written by one user, newest first
func GetUserPosts(c *fiber.Ctx) error {
	authorID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID format")
	}
	user := currentUser(c)

	posts, err := findPosts(c.Context(), bson.M{"author": authorID})
	if err != nil {
		return serverError(c, err, "Error fetching posts")
	}

	dtos, err := convertToPostDtos(c.Context(), posts, &user)
	if err != nil {
		return serverError(c, err, "Error fetching post authors")
	}
	return c.Status(fiber.StatusOK).JSON(dtos)
}

// CreatePost stores a post from a multipart form with a content field and
// optional mediaFiles
func CreatePost(c *fiber.Ctx) error {
	user := currentUser(c)
	content := strings.TrimSpace(c.FormValue("content"))

	files := formFiles(c, "mediaFiles")
	if content == "" && len(files) == 0 {
		return badRequest(c, "Post content or media is required")
	}

	mediaURLs, err := saveUploads(c.Context(), files)
	if err == errUnsupportedMedia {
		return badRequest(c, "Unsupported media type")
	}
	if err != nil {
		return serverError(c, err, "Error storing media")
	}

	now := time.Now()
	post := models.Post{
		Author:    user.Id,
		Content:   content,
		MediaURLs: mediaURLs,
		LikedBy:   []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := lib.DB.Collection("posts").InsertOne(c.Context(), post)
	if err != nil {
		discardUploads(c.Context(), mediaURLs)
		return serverError(c, err, "Failed to create post")
	}
	post.Id = result.InsertedID.(primitive.ObjectID)

	return c.Status(fiber.StatusCreated).JSON(post.ToDto(user.ToDto(&user), user.Id))
}

// GetPostByID returns a single post
func GetPostByID(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	user := currentUser(c)

	post, err := findPost(c.Context(), postID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Post not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching post")
	}

	dtos, err := convertToPostDtos(c.Context(), []models.Post{*post}, &user)
	if err != nil {
		return serverError(c, err, "Error fetching post author")
	}
	return c.Status(fiber.StatusOK).JSON(dtos[0])
}

// UpdatePost edits a post of the authenticated user. A non-empty content
// replaces the text and any uploaded media replaces the previous media.
func UpdatePost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	user := currentUser(c)

	post, err := findPost(c.Context(), postID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Post not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching post")
	}
	if post.Author != user.Id {
		return forbidden(c, "You are not authorized to edit this post")
	}

	set := bson.M{"updatedAt": time.Now()}
	if content := strings.TrimSpace(c.FormValue("content")); content != "" {
		set["content"] = content
	}

	files := formFiles(c, "mediaFiles")
	var mediaURLs []string
	if len(files) > 0 {
		mediaURLs, err = saveUploads(c.Context(), files)
		if err == errUnsupportedMedia {
			return badRequest(c, "Unsupported media type")
		}
		if err != nil {
			return serverError(c, err, "Error storing media")
		}
		set["mediaUrls"] = mediaURLs
	}

	var updated models.Post
	err = lib.DB.Collection("posts").FindOneAndUpdate(c.Context(),
		bson.M{"_id": postID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		discardUploads(c.Context(), mediaURLs)
		return serverError(c, err, "Failed to update post")
	}
	if len(files) > 0 {
		discardUploads(c.Context(), post.MediaURLs)
	}

	return c.Status(fiber.StatusOK).JSON(updated.ToDto(user.ToDto(&user), user.Id))
}

// DeletePost deletes a post by ID if the authenticated user is the author,
// together with its comments, shares and media
func DeletePost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	user := currentUser(c)

	post, err := findPost(c.Context(), postID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Post not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching post")
	}
	if post.Author != user.Id {
		return forbidden(c, "You are not authorized to delete this post")
	}

	if _, err := lib.DB.Collection("posts").DeleteOne(c.Context(), bson.M{"_id": postID}); err != nil {
		return serverError(c, err, "Error deleting post")
	}

	ctx := c.Context()
	if _, err := lib.DB.Collection("comments").DeleteMany(ctx, bson.M{"post": postID}); err != nil {
		log.WithError(err).WithField("post", postID.Hex()).Warn("Error deleting post comments")
	}
	if _, err := lib.DB.Collection("shared_posts").DeleteMany(ctx, bson.M{"post": postID}); err != nil {
		log.WithError(err).WithField("post", postID.Hex()).Warn("Error deleting post shares")
	}
	removeNotifications(ctx, bson.M{"relatedPost": postID})
	discardUploads(ctx, post.MediaURLs)

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Post deleted successfully"))
}

// LikePost toggles the like of the authenticated user and returns the new state
func LikePost(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post ID format")
	}
	user := currentUser(c)

	post, err := findPost(c.Context(), postID)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Post not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching post")
	}

	alreadyLiked := false
	for _, id := range post.LikedBy {
		if id == user.Id {
			alreadyLiked = true
			break
		}
	}

	update := bson.M{"$addToSet": bson.M{"likedBy": user.Id}}
	if alreadyLiked {
		update = bson.M{"$pull": bson.M{"likedBy": user.Id}}
	}

	var updated models.Post
	err = lib.DB.Collection("posts").FindOneAndUpdate(c.Context(),
		bson.M{"_id": postID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Post not found")
	}
	if err != nil {
		return serverError(c, err, "Error updating like")
	}

	if !alreadyLiked {
		notify(c.Context(), post.Author, user.Id, models.NotificationTypeLike, post.Id)
	}

	dto := updated.ToDto(models.UserDto{}, user.Id)
	return c.Status(fiber.StatusOK).JSON(models.LikeResult{
		Liked:     dto.Liked,
		LikeCount: dto.Likes,
	})
}

func formFiles(c *fiber.Ctx, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

func findPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := lib.DB.Collection("posts").FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func findPosts(ctx context.Context, filter bson.M) ([]models.Post, error) {
	cursor, err := lib.DB.Collection("posts").Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// convertToPostDtos resolves the authors of posts in a single query
func convertToPostDtos(ctx context.Context, posts []models.Post, viewer *models.User) ([]models.PostDto, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	for _, post := range posts {
		authorIDs = append(authorIDs, post.Author)
	}
	authors, err := lib.LoadUsers(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	dtos := make([]models.PostDto, 0, len(posts))
	for _, post := range posts {
		dtos = append(dtos, post.ToDto(authorDto(authors, post.Author, viewer), viewer.Id))
	}
	return dtos, nil
}
