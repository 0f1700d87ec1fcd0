package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/controllers"
	"github.com/theleywin/SkillShare/src/middleware"
)

// LearningPlanRoutes sets up learning plan and task routes
func LearningPlanRoutes(app *fiber.App) {
	plan := app.Group("/api/learning-plans", middleware.ProtectRoute)

	plan.Get("/", controllers.GetAllLearningPlans)
	plan.Get("/my-plans", controllers.GetMyLearningPlans)
	plan.Post("/", controllers.CreateLearningPlan)
	plan.Post("/tasks/:taskId/complete", controllers.CompleteTask)
	plan.Put("/:id", controllers.UpdateLearningPlan)
	plan.Delete("/:id", controllers.DeleteLearningPlan)
	plan.Post("/:id/extend", controllers.ExtendLearningPlan)
}
