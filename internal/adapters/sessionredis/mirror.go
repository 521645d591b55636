// Package sessionredis mirrors session state into Redis so multiple
// processes on the same host share one login.
package sessionredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
)

const defaultPrefix = "vulnera:session:"

// Mirror is a Redis-backed session mirror.
type Mirror struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.Mirror = (*Mirror)(nil)

// Options configures a Mirror.
type Options struct {
	// Client is the Redis connection. Required.
	Client redis.UniversalClient
	// Prefix namespaces the mirror's keys. Defaults to "vulnera:session:".
	Prefix string
	// TTL bounds how long entries outlive the process. Zero means no expiry;
	// the backend session cookie is the real authority either way.
	TTL time.Duration
}

// NewMirror creates a Redis-backed session mirror.
func NewMirror(opts Options) *Mirror {
	if opts.Client == nil {
		panic("sessionredis: Client is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Mirror{
		client: opts.Client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (m *Mirror) Read(ctx context.Context, key string) (string, error) {
	data, err := m.client.Get(ctx, m.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrMirrorEntryNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (m *Mirror) Write(ctx context.Context, key, value string) error {
	if err := m.client.Set(ctx, m.prefix+key, value, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (m *Mirror) Delete(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
