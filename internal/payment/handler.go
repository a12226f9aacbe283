package payment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes order creation and callback verification. Either collaborator
// may be nil when the gateway is not configured.
type Handler struct {
	broker   *Broker
	verifier *Verifier
	logger   *slog.Logger
}

// NewHandler constructs a payment HTTP handler.
func NewHandler(broker *Broker, verifier *Verifier, logger *slog.Logger) *Handler {
	return &Handler{broker: broker, verifier: verifier, logger: logger}
}

type createOrderRequest struct {
	ReceiptNotes map[string]any `json:"receiptNotes"`
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// CreateOrder creates a gateway order for the application fee.
func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	if h.broker == nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "Payment gateway not configured."})
	}

	var req createOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Invalid order request."})
		}
	}
	appID, _ := req.ReceiptNotes["applicationId"].(string)

	res, err := h.broker.CreateOrder(c.UserContext(), appID, req.ReceiptNotes)
	if err != nil {
		var gwErr *GatewayError
		switch {
		case errors.As(err, &gwErr):
			return c.Status(gwErr.StatusCode).JSON(fiber.Map{"message": "Could not create payment order.", "error": gwErr.Message})
		case errors.Is(err, ErrNotConfigured):
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "Error creating Razorpay order."})
		default:
			h.logger.Error("create order", slog.Any("error", err))
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "Could not create payment order.", "error": err.Error()})
		}
	}
	return c.Status(http.StatusOK).JSON(res)
}

// Verify checks a payment completion callback signature.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Missing payment details for verification."})
	}
	if h.verifier == nil {
		h.logger.Error("payment verification requested but RAZORPAY_KEY_SECRET is not set")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Server configuration error for payment verification."})
	}

	ok, err := h.verifier.Verify(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Missing payment details for verification."})
	}
	if !ok {
		h.logger.Warn("payment verification failed", slog.String("order_id", req.OrderID))
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Payment verification failed. Signature mismatch."})
	}

	h.logger.Info("payment verified", slog.String("order_id", req.OrderID), slog.String("payment_id", req.PaymentID))
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "message": "Payment verified successfully."})
}
