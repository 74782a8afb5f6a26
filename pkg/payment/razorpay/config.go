package razorpay

import "time"

// Config represents the configuration for the Razorpay client
type Config struct {
	// KeyID is the public API key id, used as the basic auth user
	KeyID string

	// KeySecret signs payment callbacks and authenticates API calls
	KeySecret string

	// BaseURL is the API root, e.g. https://api.razorpay.com/v1
	BaseURL string

	// Currency for created orders; defaults to INR
	Currency string

	// Timeout bounds a single HTTP call; defaults to 30s
	Timeout time.Duration

	// Breaker configures the circuit breaker around API calls
	Breaker BreakerConfig
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.KeyID == "" {
		return ErrInvalidConfig
	}
	if c.KeySecret == "" {
		return ErrInvalidConfig
	}
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Breaker.Name == "" {
		c.Breaker = DefaultBreakerConfig("razorpay")
	}
}
