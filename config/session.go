package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionBackend selects where session state is mirrored between runs.
type SessionBackend string

const (
	// SessionBackendFile mirrors the session into a JSON document under
	// the user's config directory.
	SessionBackendFile SessionBackend = "file"
	// SessionBackendRedis mirrors the session into Redis, for hosts that
	// share one login across shells or containers.
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (s *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "redis":
		*s = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: file, redis)", v)
	}
}

// RedisConfig contains Redis connection settings for the session mirror.
type RedisConfig struct {
	Addr     string        `env:"ADDR"     envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD" envDefault:""`
	DB       int           `env:"DB"       envDefault:"0"`
	Prefix   string        `env:"PREFIX"   envDefault:"vulnera:session:"`
	TTL      time.Duration `env:"TTL"      envDefault:"720h"`
}

// SessionConfig groups local session persistence configuration.
type SessionConfig struct {
	// Backend selects the mirror implementation.
	Backend SessionBackend `env:"BACKEND" envDefault:"file"`

	// StateDir overrides where the file mirror keeps its document.
	// Empty means the OS user config directory.
	StateDir string `env:"STATE_DIR"`

	// EncryptionKey protects the file mirror at rest. Hex-encoded 32
	// bytes, or any passphrase (hashed to a key). Empty disables
	// encryption with a startup warning.
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	// Redis settings (used when Backend=redis).
	Redis RedisConfig `envPrefix:"REDIS_"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	c.StateDir = strings.TrimSpace(c.StateDir)
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)

	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "vulnera:session:"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 720 * time.Hour
	}

	// A redis backend without an address cannot mirror anything; fall
	// back to the file mirror.
	if c.Backend == SessionBackendRedis && c.Redis.Addr == "" {
		c.Backend = SessionBackendFile
	}
}
