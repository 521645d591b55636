package config

import (
	"fmt"
	"strings"
)

// AuthMode represents how the client establishes its backend session.
type AuthMode string

const (
	// AuthModePassword uses email/password credential login.
	AuthModePassword AuthMode = "password"
	// AuthModeSSO uses the browser-based OIDC login flow.
	AuthModeSSO AuthMode = "sso"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "password", "sso":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, sso)", v)
	}
}

// SSOConfig contains OIDC provider configuration for browser login.
type SSOConfig struct {
	DiscoveryURL string `env:"DISCOVERY_URL"`
	ClientID     string `env:"CLIENT_ID"     envDefault:"vulnera-cli"`
	// ClientSecret is optional; CLI installs are public OAuth clients.
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	// CallbackAddr is where the local redirect listener binds. Port 0
	// picks a free port per login.
	CallbackAddr string `env:"CALLBACK_ADDR" envDefault:"127.0.0.1:0"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which login flow the CLI drives.
	Mode AuthMode `env:"MODE" envDefault:"password"`

	// SSO configuration (used when Mode=sso).
	SSO SSOConfig `envPrefix:"SSO_"`
}

// Sanitize applies guardrails to authentication configuration values.
func (c *AuthConfig) Sanitize() {
	c.SSO.DiscoveryURL = strings.TrimSpace(c.SSO.DiscoveryURL)
	c.SSO.ClientID = strings.TrimSpace(c.SSO.ClientID)
	c.SSO.Scope = strings.TrimSpace(c.SSO.Scope)
	if c.SSO.CallbackAddr = strings.TrimSpace(c.SSO.CallbackAddr); c.SSO.CallbackAddr == "" {
		c.SSO.CallbackAddr = "127.0.0.1:0"
	}

	// SSO without a discovery document cannot work; fall back to
	// credential login instead of failing every command at startup.
	if c.Mode == AuthModeSSO && c.SSO.DiscoveryURL == "" {
		c.Mode = AuthModePassword
	}
}

// SSOConfigured reports whether the OIDC flow has what it needs.
func (c *AuthConfig) SSOConfigured() bool {
	return c.SSO.DiscoveryURL != "" && c.SSO.ClientID != ""
}
