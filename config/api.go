package config

import (
	"strings"
	"time"
)

// APIConfig contains backend endpoint configuration.
type APIConfig struct {
	// BaseURL is the backend root every request path is joined to
	// (e.g., "https://app.vulnera.io").
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Timeout bounds each backend request end to end.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// UserAgent identifies this client to the backend.
	UserAgent string `env:"USER_AGENT" envDefault:"vulnera-client/1.0"`
}

// Sanitize applies guardrails to API configuration values.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.UserAgent = strings.TrimSpace(c.UserAgent)

	// Clamp the timeout to a sane interactive range.
	if c.Timeout < time.Second {
		c.Timeout = time.Second
	}
	if c.Timeout > 5*time.Minute {
		c.Timeout = 5 * time.Minute
	}
}
