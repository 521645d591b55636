package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/k5602/Vulnera-Frontend-sub001/config"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/adapters/sessionfile"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/adapters/sessionredis"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/cryptoutil"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateEncryptor(t *testing.T) {
	logger := discardLogger()

	tests := []struct {
		name     string
		key      string
		wantNoop bool
	}{
		{name: "empty key yields noop", key: "", wantNoop: true},
		{name: "passphrase is hashed", key: "correct horse battery staple"},
		{name: "hex key is decoded", key: "000102030405060708090a0b0c0d0e0f000102030405060708090a0b0c0d0e0f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := CreateEncryptor(tt.key, logger)

			if _, isNoop := enc.(cryptoutil.NoopEncryptor); isNoop != tt.wantNoop {
				t.Fatalf("CreateEncryptor(%q) noop = %v, want %v", tt.key, isNoop, tt.wantNoop)
			}

			sealed, err := enc.Encrypt([]byte("session-token"))
			if err != nil {
				t.Fatalf("encrypt: %v", err)
			}
			opened, err := enc.Decrypt(sealed)
			if err != nil {
				t.Fatalf("decrypt: %v", err)
			}
			if string(opened) != "session-token" {
				t.Fatalf("round trip = %q, want %q", opened, "session-token")
			}
		})
	}
}

func TestBuildMirror_FileBackend(t *testing.T) {
	dir := t.TempDir()

	mirror, closer, err := BuildMirror(MirrorConfig{
		Session: config.SessionConfig{
			Backend:  config.SessionBackendFile,
			StateDir: dir,
		},
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("build mirror: %v", err)
	}
	if closer != nil {
		t.Fatal("file mirror must not hold a connection")
	}

	fm, ok := mirror.(*sessionfile.Mirror)
	if !ok {
		t.Fatalf("mirror type = %T, want *sessionfile.Mirror", mirror)
	}
	if want := filepath.Join(dir, "session.json"); fm.Path() != want {
		t.Fatalf("mirror path = %q, want %q", fm.Path(), want)
	}

	ctx := context.Background()
	if err := mirror.Write(ctx, "csrf", "tok-1"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := mirror.Read(ctx, "csrf")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "tok-1" {
		t.Fatalf("read = %q, want %q", got, "tok-1")
	}

	if _, err := os.Stat(fm.Path()); err != nil {
		t.Fatalf("session document missing: %v", err)
	}
}

func TestBuildMirror_RedisBackend(t *testing.T) {
	srv := miniredis.RunT(t)

	mirror, closer, err := BuildMirror(MirrorConfig{
		Session: config.SessionConfig{
			Backend: config.SessionBackendRedis,
			Redis: config.RedisConfig{
				Addr:   srv.Addr(),
				Prefix: "vulnera:session:",
				TTL:    time.Hour,
			},
		},
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("build mirror: %v", err)
	}
	if closer == nil {
		t.Fatal("redis mirror must expose its connection for shutdown")
	}
	defer closer.Close()

	if _, ok := mirror.(*sessionredis.Mirror); !ok {
		t.Fatalf("mirror type = %T, want *sessionredis.Mirror", mirror)
	}

	ctx := context.Background()
	if err := mirror.Write(ctx, "csrf", "tok-2"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := srv.Exists("vulnera:session:csrf"); !got {
		t.Fatal("expected namespaced key in redis")
	}
}

func TestBuildMirror_RedisUnreachable(t *testing.T) {
	_, _, err := BuildMirror(MirrorConfig{
		Session: config.SessionConfig{
			Backend: config.SessionBackendRedis,
			Redis:   config.RedisConfig{Addr: "127.0.0.1:1"},
		},
		Logger: discardLogger(),
	})
	if err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestBuildSSO(t *testing.T) {
	logger := discardLogger()

	t.Run("unconfigured yields zero value", func(t *testing.T) {
		sso := BuildSSO(config.AuthConfig{Mode: config.AuthModePassword}, nil, logger)
		if sso.Provider != nil || sso.Listen != nil {
			t.Fatalf("expected zero SSO options, got %+v", sso)
		}
	})

	t.Run("configured flow is wired without discovery", func(t *testing.T) {
		cfg := config.AuthConfig{
			Mode: config.AuthModeSSO,
			SSO: config.SSOConfig{
				DiscoveryURL: "http://127.0.0.1:1/.well-known/openid-configuration",
				ClientID:     "vulnera-cli",
				CallbackAddr: "127.0.0.1:0",
			},
		}

		// Construction must not dial the (unreachable) discovery URL.
		sso := BuildSSO(cfg, nil, logger)
		if sso.Provider == nil || sso.Listen == nil {
			t.Fatal("expected provider and listener to be wired")
		}

		listener, err := sso.Listen()
		if err != nil {
			t.Fatalf("bind callback listener: %v", err)
		}
		defer listener.Close()
		if listener.RedirectURL() == "" {
			t.Fatal("expected a redirect URL")
		}

		// First use hits discovery and surfaces the failure.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _, _, err = sso.Provider.Begin(ctx, ports.BeginInput{RedirectURL: listener.RedirectURL()})
		if err == nil {
			t.Fatal("expected discovery failure on first use")
		}
	})
}

func TestBuildApp(t *testing.T) {
	dir := t.TempDir()

	cfg := config.AppConfig{
		API: config.APIConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   5 * time.Second,
			UserAgent: "vulnera-client/test",
		},
		Auth: config.AuthConfig{Mode: config.AuthModePassword},
		Session: config.SessionConfig{
			Backend:  config.SessionBackendFile,
			StateDir: dir,
		},
	}
	cfg.Sanitize()

	app, err := BuildApp(AppOptions{Config: cfg, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer app.Close()

	if app.Store == nil || app.Client == nil {
		t.Fatal("store and client must be wired")
	}
	if app.Auth == nil || app.Scans == nil || app.Organizations == nil ||
		app.LLM == nil || app.Enrichment == nil || app.Health == nil || app.Patch == nil {
		t.Fatal("every domain service must be wired")
	}
	if app.Metrics != nil {
		t.Fatal("metrics must stay nil when disabled")
	}
}

func TestBuildApp_BadBaseURL(t *testing.T) {
	cfg := config.AppConfig{
		API:     config.APIConfig{BaseURL: "not-a-url"},
		Session: config.SessionConfig{Backend: config.SessionBackendFile, StateDir: t.TempDir()},
	}

	if _, err := BuildApp(AppOptions{Config: cfg, Logger: discardLogger()}); err == nil {
		t.Fatal("expected error for relative base URL")
	}
}

func TestLoadConfig_AppliesProfileContext(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "vulnera")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := `current-context: staging
contexts:
  staging:
    base-url: https://staging.vulnera.io/
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.API.BaseURL != "https://staging.vulnera.io" {
		t.Fatalf("base URL = %q, want profile value", cfg.API.BaseURL)
	}

	if _, err := LoadConfig("missing-context"); err == nil {
		t.Fatal("expected error for unknown context")
	}
}

func TestLoadConfig_EnvWinsOverProfile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("VULNERA_API_BASE_URL", "http://env-wins:8080")

	dir := filepath.Join(configHome, "vulnera")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := `current-context: staging
contexts:
  staging:
    base-url: https://staging.vulnera.io
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.API.BaseURL != "http://env-wins:8080" {
		t.Fatalf("base URL = %q, want env value", cfg.API.BaseURL)
	}
}
