package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/SkillShare/src/lib"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenFromRequest reads the session token from the auth cookie, falling back
// to an "Authorization: Bearer" header
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(lib.AuthCookie); token != "" {
		return token
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

// UserIDFromToken validates a token and returns the user id it was issued for
func UserIDFromToken(token string) (primitive.ObjectID, bool) {
	decoded, err := lib.VerifyJWT(token)
	if err != nil || decoded == nil {
		return primitive.NilObjectID, false
	}

	userID, ok := decoded["userId"].(string)
	if !ok {
		return primitive.NilObjectID, false
	}

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return objectID, true
}

// ProtectRoute is a middleware that checks for a valid JWT token, authenticates the user, and attaches user data to the request context
func ProtectRoute(c *fiber.Ctx) error {
	token := TokenFromRequest(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Unauthorized - No token provided"))
	}

	userID, ok := UserIDFromToken(token)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Unauthorized - Invalid token"))
	}

	user, err := lib.FindUserByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("User not found"))
	}

	c.Locals("user", *user)

	return c.Next()
}
