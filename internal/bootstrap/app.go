package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/k5602/Vulnera-Frontend-sub001/config"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/api"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/observability/statsd"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/service"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/session"
)

// App holds the assembled client stack: session store, request wrapper,
// refresh coordinator, and every domain service.
type App struct {
	Config config.AppConfig
	Logger *slog.Logger

	Store  *session.Store
	Client *api.Client

	Auth          *service.AuthService
	Scans         *service.ScanService
	Organizations *service.OrganizationService
	LLM           *service.LLMService
	Enrichment    *service.EnrichmentService
	Health        *service.HealthService
	Patch         *service.PatchService

	Metrics *statsd.Client

	closers []io.Closer
}

// AppOptions groups dependencies for BuildApp.
type AppOptions struct {
	Config config.AppConfig
	Logger *slog.Logger
}

// BuildApp assembles the client stack from configuration. The caller owns
// the returned App and must Close it to release connections.
func BuildApp(opts AppOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	app := &App{Config: cfg, Logger: logger}

	// Metrics degrade to a disabled sink on failure; a broken statsd
	// endpoint must not take the client down.
	var sink statsd.Sink
	if metricsClient := buildMetrics(logger, cfg.Observability.Metrics); metricsClient != nil {
		app.Metrics = metricsClient
		app.closers = append(app.closers, metricsClient)
		sink = metricsClient
	}

	mirror, closer, err := BuildMirror(MirrorConfig{Session: cfg.Session, Logger: logger})
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	app.Store = session.NewStore(session.StoreOptions{
		Mirror: mirror,
		Logger: logger,
	})

	// One transport for the wrapper and the refresh coordinator so the
	// backend session cookie is shared between them.
	httpClient := api.NewHTTPClient(cfg.API.Timeout)

	renewer, err := api.NewRefreshCoordinator(api.RefreshCoordinatorOptions{
		BaseURL:    cfg.API.BaseURL,
		Store:      app.Store,
		HTTPClient: httpClient,
		Logger:     logger,
		Metrics:    sink,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create refresh coordinator: %w", err), app.Close())
	}

	client, err := api.NewClient(api.ClientOptions{
		BaseURL:    cfg.API.BaseURL,
		Store:      app.Store,
		Renewer:    renewer,
		HTTPClient: httpClient,
		UserAgent:  cfg.API.UserAgent,
		Logger:     logger,
		Metrics:    sink,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create api client: %w", err), app.Close())
	}
	app.Client = client

	app.Auth = service.NewAuthService(service.AuthServiceOptions{
		Client: client,
		Store:  app.Store,
		SSO:    BuildSSO(cfg.Auth, httpClient, logger),
		Logger: logger,
	})
	app.Scans = service.NewScanService(service.ScanServiceOptions{Client: client, Logger: logger})
	app.Organizations = service.NewOrganizationService(service.OrganizationServiceOptions{Client: client, Logger: logger})
	app.LLM = service.NewLLMService(service.LLMServiceOptions{Client: client, Logger: logger})
	app.Enrichment = service.NewEnrichmentService(service.EnrichmentServiceOptions{Client: client, Logger: logger})
	app.Health = service.NewHealthService(service.HealthServiceOptions{Client: client, Logger: logger})
	app.Patch = service.NewPatchService(service.PatchServiceOptions{Logger: logger})

	return app, nil
}

// Close releases every connection the app holds.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildMetrics configures the statsd sink, or returns nil when metrics are
// disabled or the client cannot be initialised.
func buildMetrics(logger *slog.Logger, cfg config.MetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}

	return client
}
