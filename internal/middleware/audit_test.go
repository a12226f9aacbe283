package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestAuditLogsRequestWithID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestID(), Audit(logger))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "down") })

	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(requestIDHeader))

	_, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/boom", nil))
	require.NoError(t, err)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "/health", lines[0]["path"])
	assert.Equal(t, "req-123", lines[0]["request_id"])
	assert.Equal(t, float64(200), lines[0]["status"])

	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, float64(502), lines[1]["status"])
	assert.NotEmpty(t, lines[1]["request_id"])
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetRequestID(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	resp, err := app.Test(req)
	require.NoError(t, err)

	id := resp.Header.Get(requestIDHeader)
	assert.Len(t, id, 36)
}
