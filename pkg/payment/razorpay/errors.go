package razorpay

import "errors"

var (
	// ErrInvalidConfig is returned by NewClient when keys or base URL are missing
	ErrInvalidConfig = errors.New("invalid razorpay configuration")

	// ErrInvalidRequest is returned for 4xx responses other than 401
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when the API key pair is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrGatewayFailure is returned for 5xx responses
	ErrGatewayFailure = errors.New("payment gateway failure")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrCircuitOpen is returned while the breaker rejects calls
	ErrCircuitOpen = errors.New("payment gateway circuit open")

	// ErrMalformedSignature is returned when a signature is not hex encoded
	ErrMalformedSignature = errors.New("malformed payment signature")
)
