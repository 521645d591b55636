package ports

// Package ports defines interfaces (hexagonal ports) for session and auth
// behavior. Implementations live in internal/adapters; orchestration in
// internal/service and internal/session.

import (
	"context"

	domainauth "github.com/k5602/Vulnera-Frontend-sub001/internal/domain/auth"
)

// BeginInput carries inputs for initiating an SSO flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
	// RedirectURL must repeat the value used in Begin; providers reject the
	// exchange otherwise.
	RedirectURL string
}

// SSOProvider initiates and completes an authentication flow against an IdP.
type SSOProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// CallbackResult carries the query parameters the IdP sent to the local
// redirect endpoint.
type CallbackResult struct {
	Code  string
	State string
}

// CallbackListener serves one login flow's redirect endpoint.
type CallbackListener interface {
	// RedirectURL returns the URL registered with the provider for this flow.
	RedirectURL() string
	// Wait blocks until the provider redirects back or ctx expires.
	Wait(ctx context.Context) (CallbackResult, error)
	// Close stops the listener. Safe to call more than once.
	Close() error
}

// ListenCallback binds a fresh callback listener for one login flow.
type ListenCallback func() (CallbackListener, error)
