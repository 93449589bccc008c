package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return SendError(c, err) })

	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, testErr)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out["error"].(map[string]interface{})
}

func TestSendError_AppError(t *testing.T) {
	status, body := respond(t, errors.NotFound("route", "ubungo-posta"))

	assert.Equal(t, 404, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestSendError_StepErrorCarriesStepAndStoreMessage(t *testing.T) {
	cause := errors.ErrConflict.Wrap(fmt.Errorf("duplicate key value violates unique constraint \"routes_slug_key\""))
	status, body := respond(t, errors.AtStep("route", cause))

	assert.Equal(t, 409, status)
	assert.Equal(t, "CONFLICT", body["code"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, "route", details["step"])
	assert.Contains(t, details["store_message"], "routes_slug_key")
}

func TestSendError_UnknownErrorIs500(t *testing.T) {
	status, body := respond(t, fmt.Errorf("boom"))

	assert.Equal(t, 500, status)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
}
