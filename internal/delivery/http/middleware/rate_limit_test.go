package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daroutes-wiki/internal/domain"
)

func TestRateLimitWrites(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		// stand-in for Auth
		if id := c.Get("X-User"); id != "" {
			c.Locals(localActor, domain.Actor{UserID: id, Role: domain.RoleEditor})
		}
		return c.Next()
	})
	app.Use(RateLimitWrites(0.001, 2))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	app.Post("/w", ok)
	app.Get("/r", ok)

	send := func(method, path, user string) *http.Response {
		req := httptest.NewRequest(method, path, nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/w", "alice").StatusCode)
	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/w", "alice").StatusCode)

	limited := send(http.MethodPost, "/w", "alice")
	assert.Equal(t, http.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, "1", limited.Header.Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/w", "bob").StatusCode, "limits are per user")
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "/r", "alice").StatusCode)
	}
}
