package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	last  OrderRequest
	order *Order
	err   error
}

func (g *stubGateway) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	g.last = req
	return g.order, g.err
}

var testConfig = BrokerConfig{KeyID: "rzp_test_key", KeySecret: "s3cr3t", Fee: 50000}

func fixedNow() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

func TestNewBrokerRequiresConfiguration(t *testing.T) {
	gw := &stubGateway{}
	cases := []BrokerConfig{
		{KeySecret: "s", Fee: 1},
		{KeyID: "k", Fee: 1},
		{KeyID: "k", KeySecret: "s"},
		{KeyID: "k", KeySecret: "s", Fee: -100},
	}
	for _, cfg := range cases {
		_, err := NewBroker(cfg, gw, nil)
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
	_, err := NewBroker(testConfig, nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildReceipt(t *testing.T) {
	assert.Equal(t, "rcpt_app_mv9b5pc0", BuildReceipt(fixedNow(), ""))
	assert.Equal(t, "rcpt_app_mv9b5pc0_APP-123456", BuildReceipt(fixedNow(), "APP-1234567890"))

	far := time.UnixMilli(1<<62 - 1)
	receipt := BuildReceipt(far, strings.Repeat("x", 64))
	assert.LessOrEqual(t, len(receipt), maxReceiptLength)
	assert.True(t, strings.HasPrefix(receipt, "rcpt_app_z1ci99jj7473_"))
}

func TestTruncateKeepsLeadingCharacters(t *testing.T) {
	long := "rcpt_app_mv9b5pc0_" + strings.Repeat("z", 50)
	got := truncate(long, maxReceiptLength)
	assert.Len(t, got, maxReceiptLength)
	assert.True(t, strings.HasPrefix(got, "rcpt_app_mv9b5pc0_"))
	assert.Equal(t, "ab", truncate("ab", 10))
	assert.Equal(t, "äö", truncate("äöü", 2))
}

func TestCreateOrderSuccess(t *testing.T) {
	gw := &stubGateway{order: &Order{ID: "order_ABC", Amount: 50000, Currency: Currency, Status: "created"}}
	b, err := NewBroker(testConfig, gw, nil)
	require.NoError(t, err)
	b.now = fixedNow

	notes := map[string]any{"applicationId": "APP-42", "course": "BSc"}
	res, err := b.CreateOrder(context.Background(), "APP-42", notes)
	require.NoError(t, err)

	assert.Equal(t, "order_ABC", res.ID)
	assert.Equal(t, "rzp_test_key", res.KeyID)
	assert.Equal(t, int64(50000), gw.last.Amount)
	assert.Equal(t, "INR", gw.last.Currency)
	assert.Equal(t, "rcpt_app_mv9b5pc0_APP-42", gw.last.Receipt)
	assert.Equal(t, notes, gw.last.Notes)
}

func TestCreateOrderGatewayError(t *testing.T) {
	gw := &stubGateway{err: &GatewayError{StatusCode: 401, Message: "Authentication failed"}}
	b, _ := NewBroker(testConfig, gw, nil)

	_, err := b.CreateOrder(context.Background(), "", nil)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 401, gwErr.StatusCode)
	assert.Equal(t, "Authentication failed", gwErr.Message)
}

func TestCreateOrderPlainErrorDefaultsTo500(t *testing.T) {
	b, _ := NewBroker(testConfig, &stubGateway{err: errors.New("boom")}, nil)

	_, err := b.CreateOrder(context.Background(), "", nil)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 500, gwErr.StatusCode)
}

func TestCreateOrderEmptyOrder(t *testing.T) {
	b, _ := NewBroker(testConfig, &stubGateway{}, nil)
	_, err := b.CreateOrder(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	b, _ = NewBroker(testConfig, &stubGateway{order: &Order{}}, nil)
	_, err = b.CreateOrder(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
