package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/controllers"
	"github.com/theleywin/SkillShare/src/middleware"
)

// UserRoutes sets up profile and follow routes
func UserRoutes(app *fiber.App) {
	user := app.Group("/api/users", middleware.ProtectRoute)

	user.Get("/current", controllers.GetCurrentUser)
	user.Get("/:id", controllers.GetUserProfile)
	user.Patch("/:id", controllers.UpdateProfile)
	user.Post("/:id/photo", controllers.UploadProfilePhoto)
	user.Get("/:id/posts", controllers.GetUserPosts)
	user.Get("/:id/following", controllers.GetFollowing)
	user.Get("/:id/followers", controllers.GetFollowers)
	user.Get("/:id/following/:followId", controllers.CheckFollowing)
	user.Post("/:id/follow/:followId", controllers.FollowUser)
	user.Delete("/:id/follow/:followId", controllers.UnfollowUser)
}
