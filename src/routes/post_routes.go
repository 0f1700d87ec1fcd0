package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/controllers"
	"github.com/theleywin/SkillShare/src/middleware"
)

// PostRoutes sets up post, comment, like and share routes
func PostRoutes(app *fiber.App) {
	post := app.Group("/api/posts", middleware.ProtectRoute)

	// shared routes go first so that "shared" is never read as a post id
	post.Get("/shared/me", controllers.GetMySharedPosts)
	post.Get("/shared/user/:userId", controllers.GetUserSharedPosts)
	post.Delete("/shared/:id", controllers.DeleteSharedPost)

	post.Get("/", controllers.GetFeedPosts)
	post.Post("/", controllers.CreatePost)
	post.Get("/:id", controllers.GetPostByID)
	post.Put("/:id", controllers.UpdatePost)
	post.Delete("/:id", controllers.DeletePost)
	post.Post("/:id/like", controllers.LikePost)
	post.Post("/:id/share", controllers.SharePost)

	post.Get("/:postId/comments", controllers.GetComments)
	post.Post("/:postId/comments", controllers.CreateComment)
	post.Put("/:postId/comments/:id", controllers.UpdateComment)
	post.Delete("/:postId/comments/:id", controllers.DeleteComment)
}
