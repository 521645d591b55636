package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/k5602/Vulnera-Frontend-sub001/config"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/adapters/oidc"
	domainauth "github.com/k5602/Vulnera-Frontend-sub001/internal/domain/auth"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/service"
)

// BuildSSO assembles the browser login flow from configuration. It returns
// the zero value when SSO is not configured, which disables the flow while
// leaving credential login intact.
//
// OIDC discovery is deferred until the first login attempt so that commands
// which never authenticate stay off the network.
func BuildSSO(cfg config.AuthConfig, httpClient *http.Client, logger *slog.Logger) service.SSOOptions {
	if !cfg.SSOConfigured() {
		return service.SSOOptions{}
	}

	sso := cfg.SSO
	provider := &lazySSOProvider{
		build: func(ctx context.Context) (ports.SSOProvider, error) {
			return oidc.NewProvider(ctx, oidc.ProviderConfig{
				ClientID:     sso.ClientID,
				ClientSecret: sso.ClientSecret,
				Scope:        sso.Scope,
				DiscoveryURL: sso.DiscoveryURL,
				HTTPClient:   httpClient,
			})
		},
	}

	listen := func() (ports.CallbackListener, error) {
		return oidc.NewCallbackListener(oidc.CallbackOptions{
			Addr:   sso.CallbackAddr,
			Logger: logger,
		})
	}

	return service.SSOOptions{Provider: provider, Listen: listen}
}

// lazySSOProvider defers OIDC discovery until the provider is first used.
// A failed discovery is retried on the next call rather than cached.
type lazySSOProvider struct {
	build func(ctx context.Context) (ports.SSOProvider, error)

	mu       sync.Mutex
	provider ports.SSOProvider
}

var _ ports.SSOProvider = (*lazySSOProvider)(nil)

//nolint:ireturn // resolve hands back the port so callers stay provider-agnostic.
func (p *lazySSOProvider) resolve(ctx context.Context) (ports.SSOProvider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.provider != nil {
		return p.provider, nil
	}

	provider, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.provider = provider
	return provider, nil
}

func (p *lazySSOProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	provider, err := p.resolve(ctx)
	if err != nil {
		return "", "", "", fmt.Errorf("discover identity provider: %w", err)
	}
	return provider.Begin(ctx, in)
}

func (p *lazySSOProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	provider, err := p.resolve(ctx)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("discover identity provider: %w", err)
	}
	return provider.Exchange(ctx, in)
}
