package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/lib"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProtectRouteRejectsMissingToken(t *testing.T) {
	app := fiber.New()
	app.Get("/private", ProtectRoute, func(c *fiber.Ctx) error { return c.SendString("ok") })

	res, err := app.Test(httptest.NewRequest("GET", "/private", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "Unauthorized - No token provided", body["message"])
}

func TestProtectRouteRejectsInvalidToken(t *testing.T) {
	app := fiber.New()
	app.Get("/private", ProtectRoute, func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestTokenFromRequestPrefersCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(TokenFromRequest(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", lib.AuthCookie+"=from-cookie")
	req.Header.Set("Authorization", "Bearer from-header")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, _ := res.Body.Read(buf)
	assert.Equal(t, "from-cookie", string(buf[:n]))
}

func TestUserIDFromToken(t *testing.T) {
	id := primitive.NewObjectID()
	token, err := lib.GenerateJWT(id)
	require.NoError(t, err)

	got, ok := UserIDFromToken(token)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = UserIDFromToken("garbage")
	assert.False(t, ok)
}

func TestMetricsHandlerCountsRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	app := fiber.New()
	app.Use(m.Handler)
	app.Get("/api/posts/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 2; i++ {
		_, err := app.Test(httptest.NewRequest("GET", "/api/posts/42", nil), -1)
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/posts/:id", "204")))
}
