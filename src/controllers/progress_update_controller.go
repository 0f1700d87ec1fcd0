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

// GetProgressUpdates returns every progress update, newest first
func GetProgressUpdates(c *fiber.Ctx) error {
	user := currentUser(c)

	cursor, err := lib.DB.Collection("progress_updates").Find(c.Context(), bson.M{},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return serverError(c, err, "Error fetching progress updates")
	}
	defer cursor.Close(c.Context())

	updates := []models.ProgressUpdate{}
	if err := cursor.All(c.Context(), &updates); err != nil {
		return serverError(c, err, "Error decoding progress updates")
	}

	authorIDs := make([]primitive.ObjectID, 0, len(updates))
	for _, update := range updates {
		authorIDs = append(authorIDs, update.Author)
	}
	authors, err := lib.LoadUsers(c.Context(), authorIDs)
	if err != nil {
		return serverError(c, err, "Error fetching progress update authors")
	}

	dtos := make([]models.ProgressUpdateDto, 0, len(updates))
	for _, update := range updates {
		dtos = append(dtos, update.ToDto(authorDto(authors, update.Author, &user)))
	}
	return c.Status(fiber.StatusOK).JSON(dtos)
}

// CreateProgressUpdate stores a progress update of the authenticated user
func CreateProgressUpdate(c *fiber.Ctx) error {
	var req models.ProgressUpdateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	user := currentUser(c)

	now := time.Now()
	update := models.ProgressUpdate{
		Author:    user.Id,
		Skill:     strings.TrimSpace(req.Skill),
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := lib.DB.Collection("progress_updates").InsertOne(c.Context(), update)
	if err != nil {
		return serverError(c, err, "Error creating progress update")
	}
	update.Id = result.InsertedID.(primitive.ObjectID)

	return c.Status(fiber.StatusCreated).JSON(update.ToDto(user.ToDto(&user)))
}

// UpdateProgressUpdate edits a progress update of the authenticated user
func UpdateProgressUpdate(c *fiber.Ctx) error {
	updateID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid progress update ID format")
	}
	var req models.ProgressUpdateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	user := currentUser(c)

	var existing models.ProgressUpdate
	err := lib.DB.Collection("progress_updates").FindOne(c.Context(), bson.M{"_id": updateID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Progress update not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching progress update")
	}
	if existing.Author != user.Id {
		return forbidden(c, "You are not authorized to edit this progress update")
	}

	var updated models.ProgressUpdate
	err = lib.DB.Collection("progress_updates").FindOneAndUpdate(c.Context(),
		bson.M{"_id": updateID},
		bson.M{"$set": bson.M{
			"skill":     strings.TrimSpace(req.Skill),
			"content":   strings.TrimSpace(req.Content),
			"updatedAt": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return serverError(c, err, "Error updating progress update")
	}

	return c.Status(fiber.StatusOK).JSON(updated.ToDto(user.ToDto(&user)))
}

// DeleteProgressUpdate removes a progress update of the authenticated user
func DeleteProgressUpdate(c *fiber.Ctx) error {
	updateID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid progress update ID format")
	}
	user := currentUser(c)

	result, err := lib.DB.Collection("progress_updates").DeleteOne(c.Context(), bson.M{"_id": updateID, "author": user.Id})
	if err != nil {
		return serverError(c, err, "Error deleting progress update")
	}
	if result.DeletedCount == 0 {
		return notFound(c, "Progress update not found or you don't have permission to delete it")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
