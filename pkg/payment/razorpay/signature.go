package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign computes the callback signature: hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature authenticates the order/payment pair.
// A signature that is not hex encoded is an error, not a mismatch.
func VerifySignature(orderID, paymentID, signature, secret string) (bool, error) {
	if orderID == "" || paymentID == "" {
		return false, nil
	}
	given, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(given) == 0 {
		return false, ErrMalformedSignature
	}
	expected, _ := hex.DecodeString(Sign(orderID, paymentID, secret))
	return hmac.Equal(given, expected), nil
}
