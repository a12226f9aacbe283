package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/apex-admissions/admission_api/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *atomic.Int32, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	calls := &atomic.Int32{}
	idem := Idempotency(cache, time.Minute, logging.Discard())
	app.Post("/create-order", idem, func(c *fiber.Ctx) error {
		n := calls.Add(1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": "order_", "call": n})
	})
	app.Post("/flaky", idem, func(c *fiber.Ctx) error {
		calls.Add(1)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "gateway down"})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, calls, cleanup
}

func post(t *testing.T, app *fiber.App, path, key, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, string(payload)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	post(t, app, "/create-order", "", "{}")
	post(t, app, "/create-order", "", "{}")

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 handler calls got %d", got)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	resp, first := post(t, app, "/create-order", "abc123", `{"receiptNotes":{}}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, resp.StatusCode)
	}

	resp2, second := post(t, app, "/create-order", "abc123", `{"receiptNotes":{}}`)
	if resp2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, resp2.StatusCode)
	}
	if second != first {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if resp2.Header.Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay header")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 handler call got %d", got)
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	app, _, cleanup := setupTestApp(t)
	defer cleanup()

	post(t, app, "/create-order", "abc123", `{"receiptNotes":{"applicationId":"A"}}`)
	resp, _ := post(t, app, "/create-order", "abc123", `{"receiptNotes":{"applicationId":"B"}}`)

	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected %d got %d", fiber.StatusUnprocessableEntity, resp.StatusCode)
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	post(t, app, "/flaky", "retry-me", "{}")
	resp, _ := post(t, app, "/flaky", "retry-me", "{}")

	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected %d got %d", fiber.StatusBadGateway, resp.StatusCode)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected the handler to run again, got %d calls", got)
	}
}

func TestIdempotencyNilCacheIsNoop(t *testing.T) {
	app := fiber.New()
	app.Post("/x", Idempotency(nil, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, _ := post(t, app, "/x", "k", "")
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected %d got %d", fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestIdempotencyReplayKeepsCurrentRequestID(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Use(RequestID())
	app.Post("/create-order", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": "order_A"})
	})

	send := func(reqID string) *http.Response {
		req := httptest.NewRequest(fiber.MethodPost, "/create-order", strings.NewReader("{}"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(idempotencyKeyHeader, "checkout-1")
		req.Header.Set(requestIDHeader, reqID)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		return resp
	}

	if got := send("first-req").Header.Get(requestIDHeader); got != "first-req" {
		t.Fatalf("expected first-req got %q", got)
	}
	replay := send("second-req")
	if replay.Header.Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected a replayed response")
	}
	if got := replay.Header.Get(requestIDHeader); got != "second-req" {
		t.Fatalf("expected replay to carry second-req got %q", got)
	}
}
