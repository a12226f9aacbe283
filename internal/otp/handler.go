package otp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/apex-admissions/admission_api/internal/validation"
)

// Handler exposes the OTP endpoints. A nil manager means email is not configured.
type Handler struct {
	manager   *Manager
	validator *validation.Validator
	logger    *slog.Logger
}

// NewHandler constructs an OTP HTTP handler.
func NewHandler(manager *Manager, v *validation.Validator, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, validator: v, logger: logger}
}

type sendRequest struct {
	Email string `json:"email" validate:"required,plainemail"`
}

type verifyRequest struct {
	Email string                 `json:"email" validate:"required"`
	OTP   validation.LooseString `json:"otp" validate:"required"`
}

var verdictMessages = map[Verdict]string{
	VerdictVerified:        "Email OTP verified successfully.",
	VerdictNotFound:        "OTP not found or has expired. Please request a new one.",
	VerdictExpired:         "OTP expired. Please request a new one.",
	VerdictTooManyAttempts: "Maximum verification attempts reached. Please request a new OTP.",
	VerdictMismatch:        "Invalid OTP.",
}

// Send issues a code and emails it.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil || h.validator.Struct(req) != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Valid email address is required."})
	}
	if h.manager == nil {
		h.logger.Error("otp requested but email delivery is not configured")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "Email service configuration error."})
	}

	_, err := h.manager.Issue(c.UserContext(), req.Email)
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Valid email address is required."})
	case errors.Is(err, ErrDeliveryFailed):
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to send OTP email."})
	case err != nil:
		h.logger.Error("otp issue failed", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to send OTP email."})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": fmt.Sprintf("OTP sent to %s.", req.Email)})
}

// Verify checks a submitted code.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil || h.validator.Struct(req) != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"verified": false, "message": "Email and OTP are required."})
	}

	verdict := VerdictNotFound
	if h.manager != nil {
		v, err := h.manager.Verify(c.UserContext(), req.Email, string(req.OTP))
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"verified": false, "message": "Email and OTP are required."})
		}
		verdict = v
	}

	if verdict == VerdictVerified {
		return c.Status(http.StatusOK).JSON(fiber.Map{"verified": true, "message": verdictMessages[verdict]})
	}
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"verified": false, "message": verdictMessages[verdict]})
}
