package controllers

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/theleywin/SkillShare/src/config"
	"github.com/theleywin/SkillShare/src/lib"
	"github.com/theleywin/SkillShare/src/logging"
	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	settings config.Server
	media    storage.MediaStore
	log      = logging.For("controllers")
)

// Setup hands the handlers their settings and media store
func Setup(cfg config.Server, store storage.MediaStore) {
	settings = cfg
	media = store
}

func currentUser(c *fiber.Ctx) models.User {
	return c.Locals("user").(models.User)
}

func paramID(c *fiber.Ctx, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params(name))
	return id, err == nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(lib.MessageResponse(message))
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(lib.MessageResponse(message))
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(lib.MessageResponse(message))
}

func serverError(c *fiber.Ctx, err error, message string) error {
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error(message)
	return c.Status(fiber.StatusInternalServerError).JSON(lib.MessageResponse("Internal server error"))
}

// parseBody decodes and validates a JSON body. It writes the 400 response
// itself and reports whether the handler may continue.
func parseBody(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, badRequest(c, "Invalid request body")
	}
	if err := models.Validate(dst); err != nil {
		return false, badRequest(c, models.DescribeValidation(err))
	}
	return true, nil
}

func authorDto(users map[primitive.ObjectID]models.User, id primitive.ObjectID, viewer *models.User) models.UserDto {
	if user, ok := users[id]; ok {
		return user.ToDto(viewer)
	}
	return lib.DeletedUser(id)
}

// saveUploads stores every file of a multipart field and returns their URLs
// in upload order. Already stored files are removed when a later one fails.
func saveUploads(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, header := range files {
		if !storage.IsAllowed(header.Filename) {
			discardUploads(ctx, urls)
			return nil, errUnsupportedMedia
		}
		file, err := header.Open()
		if err != nil {
			discardUploads(ctx, urls)
			return nil, errors.Wrap(err, "open upload")
		}
		url, err := media.Save(ctx, header.Filename, header.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			discardUploads(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func discardUploads(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := media.Delete(ctx, url); err != nil {
			log.WithError(err).WithField("url", url).Warn("Error removing media file")
		}
	}
}

var errUnsupportedMedia = errors.New("unsupported media type")

// notify stores a notification for recipient unless the actor is the recipient
func notify(ctx context.Context, recipient, actor primitive.ObjectID, kind models.NotificationType, post primitive.ObjectID) {
	if recipient == actor {
		return
	}
	now := time.Now()
	notification := models.Notification{
		Recipient:   recipient,
		Type:        kind,
		RelatedUser: actor,
		RelatedPost: post,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := lib.DB.Collection("notifications").InsertOne(ctx, notification); err != nil {
		log.WithError(err).WithField("type", kind).Error("Error creating notification")
	}
}

func removeNotifications(ctx context.Context, filter bson.M) {
	if _, err := lib.DB.Collection("notifications").DeleteMany(ctx, filter); err != nil {
		log.WithError(err).Warn("Error removing notifications")
	}
}
