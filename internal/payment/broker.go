package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/apex-admissions/admission_api/internal/logging"
)

const (
	// Currency is the fixed ISO code for application fees.
	Currency         = "INR"
	receiptPrefix    = "rcpt_app_"
	maxReceiptLength = 40
	maxAppIDLength   = 10
)

// BrokerConfig holds the server-side order parameters.
type BrokerConfig struct {
	KeyID     string
	KeySecret string
	// Fee is in minor currency units and must be positive.
	Fee int64
}

// OrderResult is the gateway order plus the public key the checkout UI needs.
type OrderResult struct {
	*Order
	KeyID string `json:"key_id"`
}

// Broker turns an application-fee request into a gateway order.
type Broker struct {
	gateway Gateway
	keyID   string
	fee     int64
	now     func() time.Time
	logger  *slog.Logger
}

// NewBroker validates cfg and returns ErrNotConfigured when anything required is missing.
func NewBroker(cfg BrokerConfig, gateway Gateway, logger *slog.Logger) (*Broker, error) {
	if gateway == nil || cfg.KeyID == "" || cfg.KeySecret == "" || cfg.Fee <= 0 {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Broker{gateway: gateway, keyID: cfg.KeyID, fee: cfg.Fee, now: time.Now, logger: logger}, nil
}

// CreateOrder requests an order for the application fee. applicationID may be empty.
func (b *Broker) CreateOrder(ctx context.Context, applicationID string, notes map[string]any) (OrderResult, error) {
	req := OrderRequest{
		Amount:   b.fee,
		Currency: Currency,
		Receipt:  BuildReceipt(b.now(), applicationID),
		Notes:    notes,
	}

	order, err := b.gateway.CreateOrder(ctx, req)
	if err != nil {
		var gwErr *GatewayError
		if !errors.As(err, &gwErr) {
			gwErr = &GatewayError{Message: err.Error()}
		}
		if gwErr.StatusCode == 0 {
			gwErr.StatusCode = 500
		}
		b.logger.Error("create order failed", slog.String("receipt", req.Receipt), slog.Int("status", gwErr.StatusCode), slog.String("error", gwErr.Message))
		return OrderResult{}, gwErr
	}
	if order == nil || order.ID == "" {
		return OrderResult{}, fmt.Errorf("%w: gateway returned no order", ErrNotConfigured)
	}

	b.logger.Info("order created", slog.String("order_id", order.ID), slog.String("receipt", req.Receipt))
	return OrderResult{Order: order, KeyID: b.keyID}, nil
}

// BuildReceipt returns rcpt_app_<base36 millis>[_<first 10 chars of applicationID>],
// cut from the right to 40 characters so the timestamp prefix always survives.
func BuildReceipt(now time.Time, applicationID string) string {
	receipt := receiptPrefix + strconv.FormatInt(now.UnixMilli(), 36)
	if applicationID != "" {
		receipt += "_" + truncate(applicationID, maxAppIDLength)
	}
	return truncate(receipt, maxReceiptLength)
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
