package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/controllers"
)

// AuthRoutes sets up local and provider login routes
func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)
	auth.Post("/logout", controllers.Logout)
	auth.Get("/session", controllers.GetSession)

	app.Get("/oauth2/authorization/:provider", controllers.OAuthRedirect)
	app.Get("/login/oauth2/code/:provider", controllers.OAuthCallback)
}
