package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library, every variable carrying the VULNERA_
// prefix. See individual domain config files for details:
//   - api.go: backend endpoint configuration
//   - auth.go: authentication configuration
//   - session.go: local session persistence configuration
//   - observability.go: logging and metrics configuration
type AppConfig struct {
	// API configures the backend endpoint.
	API APIConfig `envPrefix:"VULNERA_API_"`

	// Auth configures how sessions are established.
	Auth AuthConfig `envPrefix:"VULNERA_AUTH_"`

	// Session configures where session state is mirrored.
	Session SessionConfig `envPrefix:"VULNERA_SESSION_"`

	// Observability configures logging and metrics.
	Observability ObservabilityConfig `envPrefix:"VULNERA_OBSERVABILITY_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment
// variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Session.Sanitize()
	c.Observability.Sanitize()
}
