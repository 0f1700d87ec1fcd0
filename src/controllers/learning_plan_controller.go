package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/theleywin/SkillShare/src/lib"
	"github.com/theleywin/SkillShare/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetAllLearningPlans returns the plans of every user, newest first
func GetAllLearningPlans(c *fiber.Ctx) error {
	user := currentUser(c)
	plans, err := findPlans(c.Context(), bson.M{})
	if err != nil {
		return serverError(c, err, "Error fetching learning plans")
	}
	return respondPlans(c, plans, &user)
}

// GetMyLearningPlans returns the plans of the authenticated user, newest first
func GetMyLearningPlans(c *fiber.Ctx) error {
	user := currentUser(c)
	plans, err := findPlans(c.Context(), bson.M{"owner": user.Id})
	if err != nil {
		return serverError(c, err, "Error fetching learning plans")
	}
	return respondPlans(c, plans, &user)
}

// CreateLearningPlan stores a plan with its tasks for the authenticated user
func CreateLearningPlan(c *fiber.Ctx) error {
	var req models.LearningPlanRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	user := currentUser(c)

	now := time.Now()
	plan := models.LearningPlan{
		Owner:     user.Id,
		Topic:     strings.TrimSpace(req.Topic),
		Resources: req.Resources,
		Timeline:  req.Timeline,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Tasks:     models.MergeTasks(nil, req.Tasks, now),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := lib.DB.Collection("learning_plans").InsertOne(c.Context(), plan)
	if err != nil {
		return serverError(c, err, "Error creating learning plan")
	}
	plan.Id = result.InsertedID.(primitive.ObjectID)

	return c.Status(fiber.StatusCreated).JSON(plan.ToDto(user.ToDto(&user)))
}

// UpdateLearningPlan replaces the fields and the task list of a plan
func UpdateLearningPlan(c *fiber.Ctx) error {
	plan, ok, err := ownedPlan(c)
	if !ok {
		return err
	}
	var req models.LearningPlanRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	user := currentUser(c)

	now := time.Now()
	var updated models.LearningPlan
	err = lib.DB.Collection("learning_plans").FindOneAndUpdate(c.Context(),
		bson.M{"_id": plan.Id},
		bson.M{"$set": bson.M{
			"topic":     strings.TrimSpace(req.Topic),
			"resources": req.Resources,
			"timeline":  req.Timeline,
			"startDate": req.StartDate,
			"endDate":   req.EndDate,
			"tasks":     models.MergeTasks(plan.Tasks, req.Tasks, now),
			"updatedAt": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return serverError(c, err, "Error updating learning plan")
	}

	return c.Status(fiber.StatusOK).JSON(updated.ToDto(user.ToDto(&user)))
}

// DeleteLearningPlan removes a plan of the authenticated user
func DeleteLearningPlan(c *fiber.Ctx) error {
	plan, ok, err := ownedPlan(c)
	if !ok {
		return err
	}

	if _, err := lib.DB.Collection("learning_plans").DeleteOne(c.Context(), bson.M{"_id": plan.Id}); err != nil {
		return serverError(c, err, "Error deleting learning plan")
	}
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Learning plan deleted successfully"))
}

// ExtendLearningPlan moves the end date of a plan and marks it extended. The
// response is the caller's full plan list ordered by end date.
func ExtendLearningPlan(c *fiber.Ctx) error {
	plan, ok, err := ownedPlan(c)
	if !ok {
		return err
	}

	endDate, err := extendDateFromBody(c.Body())
	if err != nil {
		return badRequest(c, "A valid end date is required")
	}
	if plan.StartDate != nil && endDate.Before(*plan.StartDate) {
		return badRequest(c, "endDate must not be before startDate")
	}

	_, err = lib.DB.Collection("learning_plans").UpdateByID(c.Context(), plan.Id, bson.M{"$set": bson.M{
		"endDate":   endDate,
		"extended":  true,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return serverError(c, err, "Error extending learning plan")
	}

	user := currentUser(c)
	plans, err := findPlans(c.Context(), bson.M{"owner": user.Id})
	if err != nil {
		return serverError(c, err, "Error fetching learning plans")
	}
	models.SortPlansByEndDate(plans)
	return respondPlans(c, plans, &user)
}

// CompleteTask marks a task of one of the caller's plans as completed.
// Completing an already completed task returns it unchanged.
func CompleteTask(c *fiber.Ctx) error {
	taskID, ok := paramID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID format")
	}
	user := currentUser(c)

	var plan models.LearningPlan
	err := lib.DB.Collection("learning_plans").FindOne(c.Context(), bson.M{"tasks._id": taskID}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return notFound(c, "Task not found")
	}
	if err != nil {
		return serverError(c, err, "Error fetching task")
	}
	if plan.Owner != user.Id {
		return forbidden(c, "You are not authorized to complete this task")
	}

	for _, task := range plan.Tasks {
		if task.Id == taskID && task.Completed {
			return c.Status(fiber.StatusOK).JSON(task.ToDto())
		}
	}

	now := time.Now()
	var updated models.LearningPlan
	err = lib.DB.Collection("learning_plans").FindOneAndUpdate(c.Context(),
		bson.M{"_id": plan.Id, "tasks._id": taskID},
		bson.M{"$set": bson.M{
			"tasks.$.completed":   true,
			"tasks.$.completedAt": now,
			"updatedAt":           now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return serverError(c, err, "Error completing task")
	}

	for _, task := range updated.Tasks {
		if task.Id == taskID {
			return c.Status(fiber.StatusOK).JSON(task.ToDto())
		}
	}
	return notFound(c, "Task not found")
}

// extendDateFromBody accepts either a bare JSON string or {"endDate": "..."}
func extendDateFromBody(body []byte) (time.Time, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return time.Time{}, errors.New("empty body")
	}

	var value string
	if body[0] == '{' {
		var req models.ExtendRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return time.Time{}, err
		}
		if err := models.Validate(req); err != nil {
			return time.Time{}, err
		}
		value = req.EndDate
	} else if err := json.Unmarshal(body, &value); err != nil {
		value = string(body)
	}
	return models.ParsePlanDate(value)
}

func ownedPlan(c *fiber.Ctx) (*models.LearningPlan, bool, error) {
	planID, ok := paramID(c, "id")
	if !ok {
		return nil, false, badRequest(c, "Invalid learning plan ID format")
	}
	user := currentUser(c)

	var plan models.LearningPlan
	err := lib.DB.Collection("learning_plans").FindOne(c.Context(), bson.M{"_id": planID}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, false, notFound(c, "Learning plan not found")
	}
	if err != nil {
		return nil, false, serverError(c, err, "Error fetching learning plan")
	}
	if plan.Owner != user.Id {
		return nil, false, forbidden(c, "You are not authorized to modify this learning plan")
	}
	return &plan, true, nil
}

func findPlans(ctx context.Context, filter bson.M) ([]models.LearningPlan, error) {
	cursor, err := lib.DB.Collection("learning_plans").Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []models.LearningPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func respondPlans(c *fiber.Ctx, plans []models.LearningPlan, viewer *models.User) error {
	ownerIDs := make([]primitive.ObjectID, 0, len(plans))
	for _, plan := range plans {
		ownerIDs = append(ownerIDs, plan.Owner)
	}
	owners, err := lib.LoadUsers(c.Context(), ownerIDs)
	if err != nil {
		return serverError(c, err, "Error fetching plan owners")
	}

	dtos := make([]models.LearningPlanDto, 0, len(plans))
	for _, plan := range plans {
		dtos = append(dtos, plan.ToDto(authorDto(owners, plan.Owner, viewer)))
	}
	return c.Status(fiber.StatusOK).JSON(dtos)
}
