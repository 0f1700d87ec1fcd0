package routes

import "github.com/gofiber/fiber/v2"

// Register mounts every API route group on app
func Register(app *fiber.App) {
	AuthRoutes(app)
	UserRoutes(app)
	PostRoutes(app)
	LearningPlanRoutes(app)
	ProgressUpdateRoutes(app)
	NotificationRoutes(app)
}
