package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "fieldbasket/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.SetOutput(os.Stdout) })
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLevelsAndFields(t *testing.T) {
	buf := capture(t)

	applog.Info(nil, "seed.catalog", map[string]any{"products": 3})
	applog.Audit(nil, "checkout.compose", nil)
	applog.Security(nil, "validation.fail", map[string]any{"field": "search"})
	applog.Error(nil, "products.query", errors.New("db locked"), nil)

	entries := lines(t, buf)
	require.Len(t, entries, 4)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "seed.catalog", entries[0]["action"])
	assert.EqualValues(t, 3, entries[0]["fields"].(map[string]any)["products"])
	assert.Equal(t, "audit", entries[1]["level"])
	assert.Equal(t, "warn", entries[2]["level"])
	assert.Equal(t, "error", entries[3]["level"])
	assert.Equal(t, "db locked", entries[3]["err"])
	assert.NotEmpty(t, entries[0]["ts"])
}

func TestRequestContextFields(t *testing.T) {
	buf := capture(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/api/products", func(c *fiber.Ctx) error {
		c.Status(fiber.StatusTeapot)
		applog.Info(c, "products.query", nil)
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	require.NoError(t, err)

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "GET", entries[0]["method"])
	assert.Equal(t, "/api/products", entries[0]["path"])
	assert.EqualValues(t, fiber.StatusTeapot, entries[0]["status"])
	assert.NotEmpty(t, entries[0]["req_id"])
}
