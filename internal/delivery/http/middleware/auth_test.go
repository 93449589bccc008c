package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daroutes-wiki/internal/delivery/http/middleware"
	"github.com/daroutes-wiki/internal/domain"
)

func whoAmI(c *fiber.Ctx) error {
	a := middleware.Actor(c)
	return c.SendString(a.UserID + "|" + string(a.Role))
}

func authApp(issuer string) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Logger(zap.NewNop()))
	app.Get("/public", whoAmI)
	app.Get("/private", middleware.Auth("s3cret", issuer, zap.NewNop()), whoAmI)
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuth_AttachesActor(t *testing.T) {
	app := authApp("daroutes")
	tok, err := middleware.NewToken("s3cret", "daroutes", "u-1", domain.RoleEditor, time.Minute)
	require.NoError(t, err)

	status, body := get(t, app, "/private", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-1|editor", body)
}

func TestAuth_UnknownRoleIsAnonymous(t *testing.T) {
	app := authApp("")
	tok, err := middleware.NewToken("s3cret", "", "u-1", domain.Role("superuser"), time.Minute)
	require.NoError(t, err)

	status, body := get(t, app, "/private", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-1|anon", body)
}

func TestAuth_Rejects(t *testing.T) {
	app := authApp("daroutes")

	expired, err := middleware.NewToken("s3cret", "daroutes", "u-1", domain.RoleEditor, -time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := middleware.NewToken("s3cret", "elsewhere", "u-1", domain.RoleEditor, time.Minute)
	require.NoError(t, err)
	noSubject, err := middleware.NewToken("s3cret", "daroutes", "", domain.RoleEditor, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not.a.jwt"},
		{"expired", expired},
		{"wrong issuer", wrongIssuer},
		{"no subject", noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, app, "/private", tt.token)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, "UNAUTHORIZED")
		})
	}
}

func TestActor_DefaultsToAnonymous(t *testing.T) {
	status, body := get(t, authApp(""), "/public", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "|anon", body)
}
