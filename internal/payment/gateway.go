package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured signals missing gateway credentials, fee or secret.
	ErrNotConfigured = errors.New("payment: gateway not configured")
	// ErrMissingInput signals an absent order id, payment id or signature.
	ErrMissingInput = errors.New("payment: order id, payment id and signature are required")
)

// OrderRequest is what the broker asks the gateway to create.
type OrderRequest struct {
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Receipt  string         `json:"receipt"`
	Notes    map[string]any `json:"notes,omitempty"`
}

// Order is the gateway's order object, returned to the client unchanged.
type Order struct {
	ID         string  `json:"id"`
	Entity     string  `json:"entity,omitempty"`
	Amount     int64   `json:"amount"`
	AmountPaid int64   `json:"amount_paid"`
	AmountDue  int64   `json:"amount_due"`
	Currency   string  `json:"currency"`
	Receipt    string  `json:"receipt"`
	OfferID    *string `json:"offer_id"`
	Status     string  `json:"status"`
	Attempts   int     `json:"attempts"`
	Notes      Notes   `json:"notes"`
	CreatedAt  int64   `json:"created_at"`
}

// Notes are free-form order annotations. The gateway encodes an empty set as
// [] rather than {}, so both decode to an empty map.
type Notes map[string]any

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*n = Notes{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

// Gateway creates orders at the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// GatewayError carries the provider's status code and message.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error (status %d): %s", e.StatusCode, e.Message)
}
