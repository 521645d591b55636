package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/k5602/Vulnera-Frontend-sub001/internal/domain/auth"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/observability/metrics"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/observability/statsd"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/session"
)

// RefreshPath is the session renewal endpoint.
const RefreshPath = "/api/v1/auth/refresh"

// singleflight key; there is only ever one session to renew.
const refreshKey = "session-refresh"

// RefreshCoordinatorOptions groups dependencies for RefreshCoordinator.
type RefreshCoordinatorOptions struct {
	// BaseURL is the backend root. Required.
	BaseURL string
	// Store receives the renewed session state. Required.
	Store *session.Store
	// HTTPClient must share the cookie jar with the request wrapper so the
	// renewal call carries the session cookie. Optional; defaults to a
	// jar-carrying client.
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// RefreshCoordinator re-establishes session state from the backend with an
// at-most-one-in-flight guarantee: concurrent callers join the pending
// renewal and share its result instead of issuing their own.
type RefreshCoordinator struct {
	endpoint string
	store    *session.Store
	http     *http.Client
	logger   *slog.Logger
	sink     statsd.Sink
	group    singleflight.Group
}

// NewRefreshCoordinator constructs a RefreshCoordinator.
func NewRefreshCoordinator(opts RefreshCoordinatorOptions) (*RefreshCoordinator, error) {
	if opts.Store == nil {
		panic("api: Store is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	return &RefreshCoordinator{
		endpoint: base + RefreshPath,
		store:    opts.Store,
		http:     resolveHTTPClient(opts.HTTPClient),
		logger:   resolveLogger(opts.Logger),
		sink:     opts.Metrics,
	}, nil
}

var _ SessionRenewer = (*RefreshCoordinator)(nil)

// Refresh renews the session, returning true when the store now holds
// re-established state. Callers arriving while a renewal is in flight share
// the pending call's result; the in-flight marker is always released when
// the call settles, so the next Refresh starts fresh work.
func (rc *RefreshCoordinator) Refresh(ctx context.Context) bool {
	v, _, _ := rc.group.Do(refreshKey, func() (any, error) {
		return rc.renew(ctx), nil
	})
	renewed, _ := v.(bool)
	return renewed
}

// renew performs the actual renewal call and classifies the outcome:
//   - 2xx carrying a token and/or user: store updated, session renewed.
//   - 2xx with an empty or unparseable body: store untouched, not renewed.
//   - 401/403: the session is gone, clear the store.
//   - 429/5xx and transport failures: possibly transient, so the existing
//     session state is preserved.
func (rc *RefreshCoordinator) renew(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.endpoint, http.NoBody)
	if err != nil {
		rc.logger.WarnContext(ctx, "build session refresh request failed", "error", err)
		metrics.EmitSessionRefresh(rc.sink, metrics.RefreshOutcomeError)
		return false
	}
	req.Header.Set("Accept", "application/json")
	// The token's absence is tolerated: on bootstrap the backend accepts
	// session-cookie-only renewal.
	if token := rc.store.Token(ctx); token != "" {
		req.Header.Set(CSRFHeaderName, token)
	}

	resp, err := rc.http.Do(req)
	if err != nil {
		rc.logger.WarnContext(ctx, "session refresh request failed", "error", err)
		metrics.EmitSessionRefresh(rc.sink, metrics.RefreshOutcomeError)
		return false
	}

	body, readErr := readBody(resp)
	if readErr != nil {
		rc.logger.WarnContext(ctx, "read session refresh response failed", "error", readErr)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		rc.logger.InfoContext(ctx, "session no longer valid, clearing", "status", resp.StatusCode)
		rc.store.Clear(ctx)
		metrics.EmitSessionRefresh(rc.sink, metrics.RefreshOutcomeInvalid)
		return false

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return rc.applyRenewal(ctx, body)

	default:
		// 429, 5xx, and anything unclassified: the existing session may
		// still be valid, so leave the store alone.
		rc.logger.WarnContext(ctx, "session refresh rejected", "status", resp.StatusCode)
		metrics.EmitSessionRefresh(rc.sink, metrics.RefreshOutcomeTransient)
		return false
	}
}

// applyRenewal commits a successful renewal response to the store. When the
// response carries both halves they are committed as one atomic pair; a
// response carrying only one half leaves the other unchanged.
func (rc *RefreshCoordinator) applyRenewal(ctx context.Context, body []byte) bool {
	token, user, ok := parseRenewal(body)
	if !ok {
		metrics.EmitSessionRefresh(rc.sink, metrics.RefreshOutcomeEmpty)
		return false
	}

	switch {
	case token != "" && user != nil:
		rc.store.SetSession(ctx, token, user)
	case token != "":
		rc.store.SetToken(ctx, token)
	default:
		rc.store.SetUser(ctx, user)
	}

	rc.logger.InfoContext(ctx, "session renewed", "has_token", token != "", "has_user", user != nil)
	metrics.EmitSessionRefresh(rc.sink, metrics.RefreshOutcomeRenewed)
	return true
}

// parseRenewal accepts both renewal response shapes: nested
// {csrf?, csrf_token?, user?} with csrf preferred, and flat
// {user_id, email, name?, roles?}.
func parseRenewal(body []byte) (string, *domainauth.User, bool) {
	if len(body) == 0 {
		return "", nil, false
	}

	var payload struct {
		Csrf      string            `json:"csrf"`
		CsrfToken string            `json:"csrf_token"`
		User      *domainauth.User  `json:"user"`
		UserID    int64             `json:"user_id"`
		Email     string            `json:"email"`
		Name      string            `json:"name"`
		Roles     []domainauth.Role `json:"roles"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil, false
	}

	token := payload.Csrf
	if token == "" {
		token = payload.CsrfToken
	}

	user := payload.User
	if user == nil && (payload.UserID != 0 || payload.Email != "") {
		user = &domainauth.User{
			ID:    payload.UserID,
			Email: payload.Email,
			Name:  payload.Name,
			Roles: payload.Roles,
		}
	}

	if token == "" && user == nil {
		return "", nil, false
	}
	return token, user, true
}
