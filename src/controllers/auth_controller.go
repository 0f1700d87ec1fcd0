package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/theleywin/SkillShare/src/lib"
	"github.com/theleywin/SkillShare/src/middleware"
	"github.com/theleywin/SkillShare/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const oauthStateCookie = "oauth-state"

// Register creates a local account, hashes the password and sets the session cookie
func Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	users := lib.DB.Collection("users")

	count, err := users.CountDocuments(c.Context(), bson.M{"email": email})
	if err != nil {
		return serverError(c, err, "Error checking email")
	}
	if count > 0 {
		return badRequest(c, "Email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), 11)
	if err != nil {
		return serverError(c, err, "Error hashing password")
	}

	now := time.Now()
	user := models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  string(hashedPassword),
		Provider:  "local",
		Following: []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := users.InsertOne(c.Context(), user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return badRequest(c, "Email already exists")
		}
		return serverError(c, err, "Error creating user")
	}
	user.Id = result.InsertedID.(primitive.ObjectID)

	if err := issueSession(c, user); err != nil {
		return serverError(c, err, "Error generating token")
	}

	return c.Status(fiber.StatusCreated).JSON(user.ToDto(&user))
}

// Login checks the credentials and sets the session cookie
func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	var user models.User
	err := lib.DB.Collection("users").FindOne(c.Context(), bson.M{
		"email": strings.ToLower(strings.TrimSpace(req.Email)),
	}).Decode(&user)
	if err != nil && err != mongo.ErrNoDocuments {
		return serverError(c, err, "Error finding user")
	}

	if err == mongo.ErrNoDocuments || user.Password == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Invalid email or password"))
	}

	if err := issueSession(c, user); err != nil {
		return serverError(c, err, "Error generating token")
	}

	user.Password = ""
	return c.Status(fiber.StatusOK).JSON(user.ToDto(&user))
}

// Logout clears the session cookie
func Logout(c *fiber.Ctx) error {
	lib.ClearAuthCookie(c)
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Logged out successfully"))
}

// GetCurrentUser returns the authenticated user
func GetCurrentUser(c *fiber.Ctx) error {
	user := currentUser(c)
	return c.Status(fiber.StatusOK).JSON(user.ToDto(&user))
}

// GetSession returns the user of a valid session cookie, or null
func GetSession(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromToken(middleware.TokenFromRequest(c))
	if !ok {
		return c.Status(fiber.StatusOK).JSON(nil)
	}
	user, err := lib.FindUserByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(nil)
	}
	return c.Status(fiber.StatusOK).JSON(user.ToDto(user))
}

// OAuthRedirect sends the browser to the provider's consent page
func OAuthRedirect(c *fiber.Ctx) error {
	provider, ok := lib.GetOAuthProvider(c.Params("provider"))
	if !ok {
		return notFound(c, "Unknown login provider")
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   settings.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(provider.Config.AuthCodeURL(state), fiber.StatusFound)
}

// OAuthCallback finishes the provider login, links or creates the account and
// redirects back to the frontend with the session cookie set
func OAuthCallback(c *fiber.Ctx) error {
	provider, ok := lib.GetOAuthProvider(c.Params("provider"))
	if !ok {
		return notFound(c, "Unknown login provider")
	}

	state := c.Cookies(oauthStateCookie)
	if state == "" || state != c.Query("state") {
		return badRequest(c, "Invalid OAuth state")
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return badRequest(c, "Missing authorization code")
	}

	token, err := provider.Config.Exchange(c.Context(), code)
	if err != nil {
		log.WithError(err).WithField("provider", provider.Name).Warn("OAuth code exchange failed")
		return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Login with provider failed"))
	}

	profile, err := provider.Profile(c.Context(), provider.Config.Client(c.Context(), token))
	if err != nil {
		return serverError(c, err, "Error reading provider profile")
	}

	user, err := upsertExternalUser(c, profile)
	if err != nil {
		return serverError(c, err, "Error linking provider account")
	}

	if err := issueSession(c, *user); err != nil {
		return serverError(c, err, "Error generating token")
	}
	return c.Redirect(settings.FrontendURL, fiber.StatusFound)
}

func upsertExternalUser(c *fiber.Ctx, profile *lib.ExternalProfile) (*models.User, error) {
	users := lib.DB.Collection("users")

	var user models.User
	err := users.FindOne(c.Context(), bson.M{"provider": profile.Provider, "providerId": profile.Subject}).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	email := strings.ToLower(profile.Email)
	err = users.FindOne(c.Context(), bson.M{"email": email}).Decode(&user)
	if err == nil {
		_, err = users.UpdateByID(c.Context(), user.Id, bson.M{"$set": bson.M{
			"provider":   profile.Provider,
			"providerId": profile.Subject,
			"updatedAt":  time.Now(),
		}})
		return &user, err
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	user = models.User{
		Name:            profile.Name,
		Email:           email,
		ProfilePhotoURL: profile.AvatarURL,
		Provider:        profile.Provider,
		ProviderID:      profile.Subject,
		Following:       []primitive.ObjectID{},
		Followers:       []primitive.ObjectID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	result, err := users.InsertOne(c.Context(), user)
	if err != nil {
		return nil, err
	}
	user.Id = result.InsertedID.(primitive.ObjectID)
	return &user, nil
}

func issueSession(c *fiber.Ctx, user models.User) error {
	token, err := lib.GenerateJWT(user.Id)
	if err != nil {
		return err
	}
	lib.SetAuthCookie(c, token, settings.CookieSecure)
	return nil
}
