package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldbasket/internal/http/handlers"
)

// friendly error surface, no internal leakage
func TestErrorHandlerFriendlyMessage(t *testing.T) {
	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())

	boom := func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	}
	app.Get("/err", boom)
	app.Get("/api/err", boom)

	var bodies []string
	entries := captureLogs(t, func() {
		for _, path := range []string{"/err", "/api/err"} {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode, path)
			body, _ := io.ReadAll(resp.Body)
			bodies = append(bodies, string(body))
		}
	})

	assert.Contains(t, bodies[0], "<html")
	assert.JSONEq(t, `{"error":"Something went wrong. Please try again."}`, bodies[1])
	for _, s := range bodies {
		assert.Contains(t, s, "Something went wrong")
		assert.False(t, strings.Contains(s, "db timeout") || strings.Contains(s, "secret"), "internal details leaked: %s", s)
	}

	e, ok := findLog(entries, "error", "server.error")
	require.True(t, ok)
	assert.NotEmpty(t, e.ReqID)
}
