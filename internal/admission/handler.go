package admission

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

var outcomeMessages = map[Outcome]string{
	OutcomeQueued:        "Admin notification queued.",
	OutcomeNotConfigured: "Email service is not configured on the server.",
	OutcomeFailed:        "Admin notification failed but proceeding.",
}

// Handler exposes the notify-admin endpoint.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler constructs an admission HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// NotifyAdmin records the application and emails the admissions office.
// Anything past input validation answers 200 so the applicant flow never stalls.
func (h *Handler) NotifyAdmin(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Application data is required."})
	}
	app, err := DecodeApplication(body)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Application data is required."})
	}

	sub, outcome, err := h.svc.Submit(c.UserContext(), app, append([]byte(nil), body...))
	if errors.Is(err, ErrMissingEmail) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Application data is required."})
	}
	if err != nil {
		h.logger.Error("notify admin", slog.Any("error", err))
		return c.Status(http.StatusOK).JSON(fiber.Map{"message": outcomeMessages[OutcomeFailed]})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": outcomeMessages[outcome], "submissionId": sub.ID})
}
