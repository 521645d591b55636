// Package session holds client-side session state: the CSRF token and the
// current user, mirrored to durable storage so sessions survive restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	domainauth "github.com/k5602/Vulnera-Frontend-sub001/internal/domain/auth"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
)

// Durable mirror keys. Mirrors namespace them, so these are part of the
// on-disk contract for session continuity across restarts.
const (
	KeyCSRFToken = "csrf"
	KeyUser      = "user"
)

// StoreOptions groups dependencies for Store.
type StoreOptions struct {
	// Mirror persists session state. Optional; when nil the store runs
	// memory-only.
	Mirror ports.Mirror
	Logger *slog.Logger
}

// Store is the process-wide session state: one CSRF token and one nullable
// current user. All access is safe for concurrent use. Mirror failures never
// propagate to callers; the store degrades to memory-only operation.
type Store struct {
	mu       sync.Mutex
	token    string
	user     *domainauth.User
	hydrated bool

	mirror ports.Mirror
	logger *slog.Logger
}

// NewStore constructs a Store.
func NewStore(opts StoreOptions) *Store {
	mirror := opts.Mirror
	if mirror == nil {
		mirror = noopMirror{}
	}
	return &Store{
		mirror: mirror,
		logger: resolveLogger(opts.Logger),
	}
}

// Token returns the current CSRF token, or the empty string when unset.
// The first read rehydrates state from the mirror exactly once.
func (s *Store) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	return s.token
}

// SetToken updates the token in memory and in the mirror.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	s.token = token
	s.writeTokenLocked(ctx)
}

// User returns a copy of the current user, or nil when unauthenticated.
func (s *Store) User(ctx context.Context) *domainauth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	return s.user.Clone()
}

// SetUser updates the user in memory and in the mirror. A nil user removes
// the durable entry.
func (s *Store) SetUser(ctx context.Context, user *domainauth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	s.user = user.Clone()
	s.writeUserLocked(ctx)
}

// SetSession updates token and user together under one critical section, so
// concurrent readers never observe a new user with a stale token or vice
// versa. Login and refresh paths use this.
func (s *Store) SetSession(ctx context.Context, token string, user *domainauth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	s.token = token
	s.user = user.Clone()
	s.writeTokenLocked(ctx)
	s.writeUserLocked(ctx)
}

// Clear resets both fields and removes the durable entries. Safe to call on
// an already-empty store.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Mark hydrated: a cleared store must not resurrect state from the mirror.
	s.hydrated = true
	s.token = ""
	s.user = nil
	if err := s.mirror.Delete(ctx, KeyCSRFToken); err != nil {
		s.logger.WarnContext(ctx, "session mirror delete failed", "key", KeyCSRFToken, "error", err)
	}
	if err := s.mirror.Delete(ctx, KeyUser); err != nil {
		s.logger.WarnContext(ctx, "session mirror delete failed", "key", KeyUser, "error", err)
	}
}

// IsAuthenticated reports whether a current user is set.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	return s.user != nil
}

// Snapshot returns token and user read under the same lock, for callers that
// need a consistent pair.
func (s *Store) Snapshot(ctx context.Context) (string, *domainauth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(ctx)
	return s.token, s.user.Clone()
}

// hydrateLocked loads state from the mirror on first use. Read failures are
// logged and leave the affected field empty; a corrupt user blob is treated
// as absent. Callers must hold s.mu.
func (s *Store) hydrateLocked(ctx context.Context) {
	if s.hydrated {
		return
	}
	s.hydrated = true

	token, err := s.mirror.Read(ctx, KeyCSRFToken)
	switch {
	case err == nil:
		s.token = token
	case errors.Is(err, ports.ErrMirrorEntryNotFound):
	default:
		s.logger.WarnContext(ctx, "session mirror read failed", "key", KeyCSRFToken, "error", err)
	}

	raw, err := s.mirror.Read(ctx, KeyUser)
	switch {
	case err == nil:
		var user domainauth.User
		if jsonErr := json.Unmarshal([]byte(raw), &user); jsonErr != nil {
			s.logger.WarnContext(ctx, "session mirror holds corrupt user entry, discarding",
				"key", KeyUser, "error", jsonErr)
			return
		}
		s.user = &user
	case errors.Is(err, ports.ErrMirrorEntryNotFound):
	default:
		s.logger.WarnContext(ctx, "session mirror read failed", "key", KeyUser, "error", err)
	}
}

func (s *Store) writeTokenLocked(ctx context.Context) {
	var err error
	if s.token == "" {
		err = s.mirror.Delete(ctx, KeyCSRFToken)
	} else {
		err = s.mirror.Write(ctx, KeyCSRFToken, s.token)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "session mirror write failed", "key", KeyCSRFToken, "error", err)
	}
}

func (s *Store) writeUserLocked(ctx context.Context) {
	if s.user == nil {
		if err := s.mirror.Delete(ctx, KeyUser); err != nil {
			s.logger.WarnContext(ctx, "session mirror delete failed", "key", KeyUser, "error", err)
		}
		return
	}
	raw, err := json.Marshal(s.user)
	if err != nil {
		s.logger.WarnContext(ctx, "marshal user for session mirror failed", "error", err)
		return
	}
	if err := s.mirror.Write(ctx, KeyUser, string(raw)); err != nil {
		s.logger.WarnContext(ctx, "session mirror write failed", "key", KeyUser, "error", err)
	}
}

// noopMirror is the memory-only fallback when no mirror is configured.
type noopMirror struct{}

func (noopMirror) Read(context.Context, string) (string, error) {
	return "", ports.ErrMirrorEntryNotFound
}
func (noopMirror) Write(context.Context, string, string) error { return nil }
func (noopMirror) Delete(context.Context, string) error        { return nil }

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
