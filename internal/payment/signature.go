package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier authenticates gateway payment callbacks.
type Verifier struct {
	secret []byte
}

// NewVerifier returns ErrNotConfigured when secret is empty.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrNotConfigured
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of orderID|paymentID.
func (v *Verifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the expected digest exactly.
// A mismatch is never an error; only absent inputs are.
func (v *Verifier) Verify(orderID, paymentID, signature string) (bool, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return false, ErrMissingInput
	}
	expected := v.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
