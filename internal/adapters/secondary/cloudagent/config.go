package cloudagent

import (
	"errors"
	"strings"
	"time"
)

// Config contains the configuration for a Cloud Agent REST client (C1).
// Both the enterprise and tenant agents speak this same shape; only the
// base URL, API key and wallet ID differ between them (spec.md §4.1).
type Config struct {
	// BaseURL is the agent's REST base URL, e.g. "https://agent.example.com".
	BaseURL string

	// APIKey is sent as the x-api-key header on every request.
	APIKey string

	// WalletID scopes multi-tenant agents to a single wallet; empty for
	// single-tenant deployments.
	WalletID string

	// Timeout bounds every HTTP call this client makes.
	Timeout time.Duration
}

// Validate checks if the configuration is valid, filling in defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("cloudagent: base URL is required")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("cloudagent: API key is required")
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
