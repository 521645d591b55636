// Package sessionfile mirrors session state into a JSON document under the
// user's config directory so logins survive process restarts.
package sessionfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/cryptoutil"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
)

// Mirror persists session entries to a single file. Writes go through a
// temp file and rename, so a crash never leaves a half-written document.
type Mirror struct {
	mu   sync.Mutex
	path string
	enc  cryptoutil.Encryptor
}

var _ ports.Mirror = (*Mirror)(nil)

// Options configures a Mirror.
type Options struct {
	// Path of the session document. Defaults to DefaultPath().
	Path string
	// Encryptor seals values at rest. Optional; defaults to the noop
	// encryptor, which only base64-marks them.
	Encryptor cryptoutil.Encryptor
}

// DefaultPath returns the session document location under the platform
// config directory, e.g. ~/.config/vulnera/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "vulnera", "session.json"), nil
}

// NewMirror creates a file-backed session mirror.
func NewMirror(opts Options) (*Mirror, error) {
	path := opts.Path
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	enc := opts.Encryptor
	if enc == nil {
		enc = cryptoutil.NoopEncryptor{}
	}

	return &Mirror{path: path, enc: enc}, nil
}

// Path returns the document location.
func (m *Mirror) Path() string { return m.path }

func (m *Mirror) Read(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return "", err
	}
	sealed, ok := doc[key]
	if !ok {
		return "", ports.ErrMirrorEntryNotFound
	}
	plain, err := m.enc.Decrypt(sealed)
	if err != nil {
		return "", fmt.Errorf("decrypt session entry %q: %w", key, err)
	}
	return string(plain), nil
}

func (m *Mirror) Write(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	sealed, err := m.enc.Encrypt([]byte(value))
	if err != nil {
		return fmt.Errorf("encrypt session entry %q: %w", key, err)
	}
	doc[key] = sealed
	return m.save(doc)
}

func (m *Mirror) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return m.save(doc)
}

// load reads the document, treating a missing file as empty.
func (m *Mirror) load() (map[string]string, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if doc == nil {
		doc = map[string]string{}
	}
	return doc, nil
}

func (m *Mirror) save(doc map[string]string) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	// CreateTemp opens the file 0600, matching the final document's mode.
	tmp, err := os.CreateTemp(dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp session file: %w", err)
	}

	// Rename is atomic, so concurrent readers never observe a partial
	// document.
	if err := os.Rename(tmpName, m.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
