package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	serviceUp            = "UP"
	serviceNotConfigured = "DOWN (Not configured)"
)

// RegisterHealthRoutes adds the liveness endpoint. Configured backing stores
// are pinged; a failing one turns the response into 503.
func RegisterHealthRoutes(app *fiber.App, d Deps, emailReady, paymentReady bool) {
	app.Get("/health", func(c *fiber.Ctx) error {
		services := fiber.Map{
			"email":   statusOf(emailReady),
			"payment": statusOf(paymentReady),
		}
		status, overall := http.StatusOK, serviceUp

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if d.DB != nil {
			services["postgres"] = serviceUp
			if err := d.DB.Ping(ctx); err != nil {
				services["postgres"] = err.Error()
				status, overall = http.StatusServiceUnavailable, "DEGRADED"
			}
		}
		if d.Cache != nil {
			services["redis"] = serviceUp
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				services["redis"] = err.Error()
				status, overall = http.StatusServiceUnavailable, "DEGRADED"
			}
		}

		return c.Status(status).JSON(fiber.Map{
			"status":    overall,
			"message":   "OTP & Payment service is running.",
			"services":  services,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

func statusOf(ready bool) string {
	if ready {
		return serviceUp
	}
	return serviceNotConfigured
}
