package lib

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndVerifyJWT(t *testing.T) {
	SetJWTSecret("test-secret")
	id := primitive.NewObjectID()

	token, err := GenerateJWT(id)
	require.NoError(t, err)

	claims, err := VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims["userId"])
}

func TestVerifyJWTRejectsForeignSignature(t *testing.T) {
	SetJWTSecret("test-secret")
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	token, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = VerifyJWT(token)
	assert.Error(t, err)
}

func TestVerifyJWTRejectsExpiredToken(t *testing.T) {
	SetJWTSecret("test-secret")
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	token, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = VerifyJWT(token)
	assert.Error(t, err)
}

func TestAuthCookieRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/login", func(c *fiber.Ctx) error {
		SetAuthCookie(c, "token-value", false)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		ClearAuthCookie(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	res, err := app.Test(httptest.NewRequest("GET", "/login", nil), -1)
	require.NoError(t, err)
	cookie := res.Header.Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, AuthCookie+"=token-value"))
	assert.Contains(t, strings.ToLower(cookie), "httponly")

	res, err = app.Test(httptest.NewRequest("GET", "/logout", nil), -1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Header.Get("Set-Cookie"), AuthCookie+"=;"))
}

func TestUniqueIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	assert.Equal(t, []primitive.ObjectID{a, b}, UniqueIDs([]primitive.ObjectID{a, b, a, b}))
	assert.Empty(t, UniqueIDs(nil))
}

func TestRegisterOAuthProviderSkipsMissingCredentials(t *testing.T) {
	RegisterOAuthProvider(GoogleProvider("", "", "http://localhost:8080"))
	_, ok := GetOAuthProvider("google")
	assert.False(t, ok)

	RegisterOAuthProvider(GithubProvider("client", "secret", "http://localhost:8080"))
	p, ok := GetOAuthProvider("github")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080/login/oauth2/code/github", p.Config.RedirectURL)
}
