package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
		BaseURL:   server.URL + "/",
		Timeout:   2 * time.Second,
		Breaker: BreakerConfig{
			Name:         t.Name(),
			MaxRequests:  1,
			Timeout:      time.Minute,
			FailureRatio: 1,
			MinRequests:  2,
		},
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{KeyID: "id", BaseURL: "http://localhost"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{KeyID: "id", KeySecret: "s", BaseURL: "http://localhost/v1/"})
	require.NoError(t, err)

	assert.Equal(t, "INR", client.Currency())
	assert.Equal(t, "http://localhost/v1", client.GetConfig().BaseURL)
	assert.Equal(t, 30*time.Second, client.GetConfig().Timeout)
}

func TestCreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(49900), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "order_rcptid_7", req.Receipt)
		assert.Equal(t, 1, req.PaymentCapture)
		assert.Equal(t, "7", req.Notes["app_order_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_ABC","entity":"order","amount":49900,"currency":"INR","receipt":"order_rcptid_7","status":"created"}`))
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:         49900,
		Receipt:        "order_rcptid_7",
		PaymentCapture: 1,
		Notes:          map[string]string{"app_order_id": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_ABC", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestFetchPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/payments/pay_123", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"pay_123","status":"captured","order_id":"order_ABC","amount":49900,"captured":true}`))
	})

	payment, err := client.FetchPayment(context.Background(), "pay_123")
	require.NoError(t, err)
	assert.Equal(t, "captured", payment.Status)
	assert.True(t, payment.Captured)

	_, err = client.FetchPayment(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"Unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"Bad request", http.StatusBadRequest, ErrInvalidRequest},
		{"Server error", http.StatusBadGateway, ErrGatewayFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"nope"}}`))
			})

			_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBreakerOpensOnGatewayFailures(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchPayment(context.Background(), "pay_1")
		assert.ErrorIs(t, err, ErrGatewayFailure)
	}

	_, err := client.FetchPayment(context.Background(), "pay_1")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	for i := 0; i < 4; i++ {
		_, err := client.FetchPayment(context.Background(), "pay_1")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Equal(t, 4, calls)
}
