package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/controllers"
	"github.com/theleywin/SkillShare/src/middleware"
)

func ProgressUpdateRoutes(app *fiber.App) {
	progress := app.Group("/api/progress-updates", middleware.ProtectRoute)

	progress.Get("/", controllers.GetProgressUpdates)
	progress.Post("/", controllers.CreateProgressUpdate)
	progress.Post("/add", controllers.CreateProgressUpdate)
	progress.Put("/:id", controllers.UpdateProgressUpdate)
	progress.Delete("/:id", controllers.DeleteProgressUpdate)
}
