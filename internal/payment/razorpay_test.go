package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayClientCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "s3cr3t", pass)

		var req OrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(50000), req.Amount)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_ABC","entity":"order","amount":50000,"amount_paid":0,"amount_due":50000,"currency":"INR","receipt":"` + req.Receipt + `","offer_id":null,"status":"created","attempts":0,"notes":{"applicationId":"APP-42"},"created_at":1792054800}`))
	}))
	defer srv.Close()

	c, err := NewRazorpayClient(srv.URL+"/", "rzp_test_key", "s3cr3t")
	require.NoError(t, err)

	order, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 50000, Currency: Currency, Receipt: "rcpt_app_x"})
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "order_ABC", order.ID)
	assert.Equal(t, "rcpt_app_x", order.Receipt)
	assert.Equal(t, "APP-42", order.Notes["applicationId"])
}

func TestRazorpayClientErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	}))
	defer srv.Close()

	c, _ := NewRazorpayClient(srv.URL, "k", "s")
	_, err := c.CreateOrder(context.Background(), OrderRequest{})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "The amount must be atleast INR 1.00", gwErr.Message)
}

func TestRazorpayClientEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewRazorpayClient(srv.URL, "k", "s")
	order, err := c.CreateOrder(context.Background(), OrderRequest{})
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestNewRazorpayClientRequiresKeys(t *testing.T) {
	_, err := NewRazorpayClient("https://api.razorpay.com", "", "s")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNotesAcceptsEmptyArray(t *testing.T) {
	var order Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"order_1","notes":[]}`), &order))
	assert.Empty(t, order.Notes)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"order_1","notes":{"k":"v"}}`), &order))
	assert.Equal(t, "v", order.Notes["k"])
}
