package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/k5602/Vulnera-Frontend-sub001/config"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/adapters/sessionfile"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/adapters/sessionredis"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
)

// MirrorConfig contains configuration for session mirror construction.
type MirrorConfig struct {
	Session config.SessionConfig
	Logger  *slog.Logger
}

// BuildMirror constructs the durable session mirror for the configured
// backend. The returned closer is non-nil when the mirror holds a
// connection that must be released on shutdown.
//
//nolint:ireturn // returning ports.Mirror lets configuration pick the file or redis mirror at runtime.
func BuildMirror(cfg MirrorConfig) (ports.Mirror, io.Closer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := ConnectRedis(cfg.Session.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect session redis: %w", err)
		}
		mirror := sessionredis.NewMirror(sessionredis.Options{
			Client: client,
			Prefix: cfg.Session.Redis.Prefix,
			TTL:    cfg.Session.Redis.TTL,
		})
		return mirror, client, nil

	default:
		path := ""
		if cfg.Session.StateDir != "" {
			path = filepath.Join(cfg.Session.StateDir, "session.json")
		}
		mirror, err := sessionfile.NewMirror(sessionfile.Options{
			Path:      path,
			Encryptor: CreateEncryptor(cfg.Session.EncryptionKey, logger),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create session file mirror: %w", err)
		}
		return mirror, nil, nil
	}
}

// ConnectRedis establishes a connection to Redis and verifies it before
// returning the client.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	}

	return client, nil
}
