package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/api"
	domainauth "github.com/k5602/Vulnera-Frontend-sub001/internal/domain/auth"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/session"
)

const (
	loginPath    = "/api/v1/auth/login"
	registerPath = "/api/v1/auth/register"
	ssoPath      = "/api/v1/auth/sso"
	logoutPath   = "/api/v1/auth/logout"
	mePath       = "/api/v1/auth/me"
	tokensPath   = "/api/v1/auth/tokens"
)

// SSOOptions groups the pieces of the browser login flow. Both fields are
// required for SSO; leaving them unset disables it.
type SSOOptions struct {
	Provider ports.SSOProvider
	Listen   ports.ListenCallback
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Client backend
	Store  *session.Store
	SSO    SSOOptions
	Logger *slog.Logger
}

// AuthService owns every flow that establishes or tears down the session:
// credential login, registration, SSO, logout, and API token management.
// It is the only caller that commits token and user to the store as one
// atomic pair.
type AuthService struct {
	client backend
	store  *session.Store
	sso    SSOOptions
	logger *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Client == nil {
		panic("auth service: Client is required")
	}
	if opts.Store == nil {
		panic("auth service: Store is required")
	}
	return &AuthService{
		client: opts.Client,
		store:  opts.Store,
		sso:    opts.SSO,
		logger: resolveServiceLogger(opts.Logger),
	}
}

// sessionEnvelope is the payload shape auth endpoints reply with.
type sessionEnvelope struct {
	Csrf      string           `json:"csrf"`
	CsrfToken string           `json:"csrf_token"`
	User      *domainauth.User `json:"user"`
}

func (e sessionEnvelope) token() string {
	if e.Csrf != "" {
		return e.Csrf
	}
	return e.CsrfToken
}

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, req domainauth.LoginRequest) (*domainauth.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, loginPath, req)
	if !res.OK {
		if res.Status == http.StatusUnauthorized {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	user, err := s.commitSession(ctx, res)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "logged in", "email", user.Email)
	return user, nil
}

// Register creates an account and establishes its session.
func (s *AuthService) Register(ctx context.Context, req domainauth.RegisterRequest) (*domainauth.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, registerPath, req)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	user, err := s.commitSession(ctx, res)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "registered", "email", user.Email)
	return user, nil
}

// Logout tears down the backend session, then always clears local state,
// even when the backend call failed. A dead backend must not leave the CLI
// stuck logged in.
func (s *AuthService) Logout(ctx context.Context) error {
	res := s.client.Post(ctx, logoutPath, nil)
	s.store.Clear(ctx)
	s.logger.InfoContext(ctx, "logged out")

	if !res.OK && res.Status != http.StatusUnauthorized {
		return apperrors.FromStatus(res.Status, res.Error)
	}
	return nil
}

// CurrentUser fetches the authenticated user from the backend and refreshes
// the stored copy.
func (s *AuthService) CurrentUser(ctx context.Context) (*domainauth.User, error) {
	user, err := s.fetchCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.store.SetUser(ctx, user)
	return user, nil
}

func (s *AuthService) fetchCurrentUser(ctx context.Context) (*domainauth.User, error) {
	res := s.client.Get(ctx, mePath, nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	// The payload is either the bare user or an envelope around one.
	var user domainauth.User
	if err := res.Decode(&user); err == nil && user.ID != 0 {
		return &user, nil
	}
	var env sessionEnvelope
	if err := res.Decode(&env); err == nil && env.User != nil {
		return env.User, nil
	}
	return nil, apperrors.Internal("backend returned no user")
}

// commitSession stores token and user from an auth response as one atomic
// pair. When the payload lacks the user half, it is completed from the
// profile endpoint before committing.
func (s *AuthService) commitSession(ctx context.Context, res api.Result) (*domainauth.User, error) {
	var env sessionEnvelope
	if res.Data != nil {
		if err := json.Unmarshal(res.Data, &env); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode session payload")
		}
	}

	user := env.User
	if user == nil {
		fetched, err := s.fetchCurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		user = fetched
	}

	if token := env.token(); token != "" {
		s.store.SetSession(ctx, token, user)
	} else {
		// Cookie-only backend: nothing to pair, the cookie jar carries the
		// session.
		s.store.SetUser(ctx, user)
	}
	return user, nil
}

// SSOFlow is one in-progress browser login. The caller surfaces AuthURL to
// the user, then blocks in Complete.
type SSOFlow struct {
	// AuthURL is where the user's browser must go.
	AuthURL string

	state    string
	nonce    string
	listener ports.CallbackListener
	svc      *AuthService
}

// BeginSSO binds the local callback listener and initiates the provider
// flow. Callers must finish with Complete or Close.
func (s *AuthService) BeginSSO(ctx context.Context) (*SSOFlow, error) {
	if s.sso.Provider == nil || s.sso.Listen == nil {
		return nil, apperrors.Validation("sso is not configured")
	}

	listener, err := s.sso.Listen()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "start callback listener")
	}

	authURL, state, nonce, err := s.sso.Provider.Begin(ctx, ports.BeginInput{
		RedirectURL: listener.RedirectURL(),
	})
	if err != nil {
		_ = listener.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "begin sso flow")
	}

	return &SSOFlow{
		AuthURL:  authURL,
		state:    state,
		nonce:    nonce,
		listener: listener,
		svc:      s,
	}, nil
}

// Complete waits for the provider redirect, exchanges the code, and commits
// the backend session. It always releases the listener.
func (f *SSOFlow) Complete(ctx context.Context) (*domainauth.User, error) {
	defer func() { _ = f.listener.Close() }()

	cb, err := f.listener.Wait(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "await provider callback")
	}
	if cb.State != f.state {
		return nil, apperrors.Unauthorized("state mismatch in provider callback")
	}

	identity, err := f.svc.sso.Provider.Exchange(ctx, ports.ExchangeInput{
		Code:        cb.Code,
		State:       cb.State,
		Nonce:       f.nonce,
		RedirectURL: f.listener.RedirectURL(),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "exchange authorization code")
	}

	return f.svc.completeSSO(ctx, identity)
}

// Close abandons the flow.
func (f *SSOFlow) Close() error {
	return f.listener.Close()
}

// completeSSO trades the verified identity for a backend session.
func (s *AuthService) completeSSO(ctx context.Context, identity domainauth.Identity) (*domainauth.User, error) {
	res := s.client.Post(ctx, ssoPath, map[string]string{"id_token": identity.IDToken})
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	user, err := s.commitSession(ctx, res)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "logged in via sso", "email", user.Email, "subject", identity.Subject)
	return user, nil
}

// CreateToken mints an API token for non-interactive use. The secret is in
// the response exactly once.
func (s *AuthService) CreateToken(ctx context.Context, req model.CreateTokenRequest) (*model.CreatedToken, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, tokensPath, req)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var created model.CreatedToken
	if err := res.Decode(&created); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode created token")
	}
	return &created, nil
}

// ListTokens returns the account's API tokens, secrets omitted.
func (s *AuthService) ListTokens(ctx context.Context) ([]model.APIToken, error) {
	res := s.client.Get(ctx, tokensPath, nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var payload struct {
		Tokens []model.APIToken `json:"tokens"`
	}
	if err := res.Decode(&payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode token list")
	}
	return payload.Tokens, nil
}

// RevokeToken deletes an API token by id.
func (s *AuthService) RevokeToken(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "token id is required")
	}

	res := s.client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   tokensPath + "/" + url.PathEscape(id),
	})
	if !res.OK {
		return apperrors.FromStatus(res.Status, res.Error)
	}
	return nil
}

// InspectToken decodes a JWT's registered claims without verifying its
// signature. Verification belongs to the backend; this is a local
// convenience for expiry checks.
func (s *AuthService) InspectToken(raw string) (*model.TokenInfo, error) {
	if raw == "" {
		return nil, apperrors.Validation("token is required")
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "parse token")
	}

	info := &model.TokenInfo{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = &claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = &claims.ExpiresAt.Time
		info.Expired = time.Now().After(claims.ExpiresAt.Time)
	}
	return info, nil
}

func resolveServiceLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
