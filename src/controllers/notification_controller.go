package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/lib"
	"github.com/theleywin/SkillShare/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetUserNotifications returns all notifications for the authenticated user, populating the related user
func GetUserNotifications(c *fiber.Ctx) error {
	user := currentUser(c)

	cursor, err := lib.DB.Collection("notifications").Find(c.Context(),
		bson.M{"recipient": user.Id},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return serverError(c, err, "Error finding notifications")
	}
	defer cursor.Close(c.Context())

	notifications := []models.Notification{}
	if err := cursor.All(c.Context(), &notifications); err != nil {
		return serverError(c, err, "Error decoding notifications")
	}

	relatedIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, notification := range notifications {
		if !notification.RelatedUser.IsZero() {
			relatedIDs = append(relatedIDs, notification.RelatedUser)
		}
	}
	related, err := lib.LoadUsers(c.Context(), relatedIDs)
	if err != nil {
		return serverError(c, err, "Error finding related users")
	}

	response := make([]models.NotificationDto, 0, len(notifications))
	for _, notification := range notifications {
		var relatedUser *models.UserDto
		if u, ok := related[notification.RelatedUser]; ok {
			dto := u.ToDto(&user)
			relatedUser = &dto
		}
		response = append(response, notification.ToDto(relatedUser))
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// MarkNotificationAsRead marks a notification as read for the authenticated user
func MarkNotificationAsRead(c *fiber.Ctx) error {
	notificationID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID format")
	}
	user := currentUser(c)

	var updated models.Notification
	err := lib.DB.Collection("notifications").FindOneAndUpdate(c.Context(),
		bson.M{"_id": notificationID, "recipient": user.Id},
		bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Notification not found or you don't have permission to update it")
	}
	if err != nil {
		return serverError(c, err, "Error in MarkNotificationAsRead")
	}

	var relatedUser *models.UserDto
	if !updated.RelatedUser.IsZero() {
		if u, err := lib.FindUserByID(c.Context(), updated.RelatedUser); err == nil {
			dto := u.ToDto(&user)
			relatedUser = &dto
		}
	}
	return c.Status(fiber.StatusOK).JSON(updated.ToDto(relatedUser))
}

// DeleteNotification deletes a notification for the authenticated user
func DeleteNotification(c *fiber.Ctx) error {
	notificationID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID format")
	}
	user := currentUser(c)

	result, err := lib.DB.Collection("notifications").DeleteOne(c.Context(), bson.M{"_id": notificationID, "recipient": user.Id})
	if err != nil {
		return serverError(c, err, "Error in DeleteNotification")
	}
	if result.DeletedCount == 0 {
		return notFound(c, "Notification not found or you don't have permission to delete it")
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Notification deleted successfully"))
}
