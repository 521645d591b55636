package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is one named backend in the profiles file. Empty fields leave the
// corresponding configuration untouched.
type Profile struct {
	BaseURL         string `yaml:"base-url"`
	AuthMode        string `yaml:"auth-mode"`
	SSODiscoveryURL string `yaml:"sso-discovery-url"`
	SSOClientID     string `yaml:"sso-client-id"`
	SSOScope        string `yaml:"sso-scope"`
	SessionBackend  string `yaml:"session-backend"`
	RedisAddr       string `yaml:"redis-addr"`
}

// Profiles is the on-disk profiles document, kubeconfig style: named
// contexts plus the one currently selected.
type Profiles struct {
	CurrentContext string             `yaml:"current-context"`
	Contexts       map[string]Profile `yaml:"contexts"`
}

// DefaultProfilesPath returns the standard profiles file location under the
// user's config directory.
func DefaultProfilesPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "vulnera", "config.yaml"), nil
}

// LoadProfiles reads the profiles file. A missing file is not an error; it
// yields an empty document so fresh installs work without any setup.
func LoadProfiles(path string) (*Profiles, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Profiles{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var out Profiles
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse profiles file: %w", err)
	}
	return &out, nil
}

// Apply overlays the named context onto cfg. An empty name selects the
// file's current-context. Explicitly set environment variables win over
// profile values, so exported overrides keep working regardless of the
// selected context.
func (p *Profiles) Apply(cfg *AppConfig, name string) error {
	if name == "" {
		name = p.CurrentContext
	}
	if name == "" {
		return nil
	}

	profile, ok := p.Contexts[name]
	if !ok {
		return fmt.Errorf("unknown context %q", name)
	}

	if err := profile.apply(cfg); err != nil {
		return fmt.Errorf("context %q: %w", name, err)
	}
	return nil
}

func (profile Profile) apply(cfg *AppConfig) error {
	setString(&cfg.API.BaseURL, "VULNERA_API_BASE_URL", profile.BaseURL)
	setString(&cfg.Auth.SSO.DiscoveryURL, "VULNERA_AUTH_SSO_DISCOVERY_URL", profile.SSODiscoveryURL)
	setString(&cfg.Auth.SSO.ClientID, "VULNERA_AUTH_SSO_CLIENT_ID", profile.SSOClientID)
	setString(&cfg.Auth.SSO.Scope, "VULNERA_AUTH_SSO_SCOPE", profile.SSOScope)
	setString(&cfg.Session.Redis.Addr, "VULNERA_SESSION_REDIS_ADDR", profile.RedisAddr)

	if profile.AuthMode != "" && !envSet("VULNERA_AUTH_MODE") {
		if err := cfg.Auth.Mode.UnmarshalText([]byte(profile.AuthMode)); err != nil {
			return err
		}
	}
	if profile.SessionBackend != "" && !envSet("VULNERA_SESSION_BACKEND") {
		if err := cfg.Session.Backend.UnmarshalText([]byte(profile.SessionBackend)); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, envKey, value string) {
	if value == "" || envSet(envKey) {
		return
	}
	*dst = value
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}
