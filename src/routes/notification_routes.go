package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/controllers"
	"github.com/theleywin/SkillShare/src/middleware"
)

// NotificationRoutes sets up notification listing, read and delete routes
func NotificationRoutes(app *fiber.App) {
	notification := app.Group("/api/notifications", middleware.ProtectRoute)

	notification.Get("/", controllers.GetUserNotifications)
	notification.Put("/:id/read", controllers.MarkNotificationAsRead)
	notification.Delete("/:id", controllers.DeleteNotification)
}
