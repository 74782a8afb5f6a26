package razorpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	valid := Sign("order_ABC", "pay_123", "secret")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
		wantErr   error
	}{
		{"Valid signature", "order_ABC", "pay_123", valid, true, nil},
		{"Wrong payment", "order_ABC", "pay_999", valid, false, nil},
		{"Wrong secret", "order_ABC", "pay_123", Sign("order_ABC", "pay_123", "other"), false, nil},
		{"Empty order id", "", "pay_123", valid, false, nil},
		{"Not hex", "order_ABC", "pay_123", "zz-not-hex", false, ErrMalformedSignature},
		{"Empty signature", "order_ABC", "pay_123", "", false, ErrMalformedSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifySignature(tt.orderID, tt.paymentID, tt.signature, "secret")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSign_KnownVector(t *testing.T) {
	assert.Equal(t,
		"f765b55bf25a1890f4c621fa2fd1a69fc2cbf9e0728f92844a67e465b3fb4125",
		Sign("order_ABC", "pay_123", "secret"))
}
