package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/observability/metrics"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/observability/statsd"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/session"
)

const (
	// CSRFHeaderName is the request and response header carrying the
	// anti-CSRF token.
	CSRFHeaderName = "X-CSRF-Token"
	// RequestIDHeaderName carries a per-request correlation id.
	RequestIDHeaderName = "X-Request-Id"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "vulnera-client/1.0"

	// maxResponseBytes bounds how much of a response body is read. Reports
	// are the largest payloads and stay well under this.
	maxResponseBytes = 8 << 20
)

// Exempt paths produce the CSRF token rather than consume it: no token is
// attached, no 401 recovery is attempted, and their responses are committed
// to the store by the auth service instead of the opportunistic harvest.
var defaultExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/auth/sso",
}

// SessionRenewer re-establishes session state from the backend. Implemented
// by RefreshCoordinator; tests substitute stubs.
type SessionRenewer interface {
	Refresh(ctx context.Context) bool
}

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	// BaseURL is the backend root, e.g. "https://app.vulnera.io".
	BaseURL string
	// Store holds the CSRF token and current user. Required.
	Store *session.Store
	// Renewer recovers from 401 responses. Optional; without one, 401s are
	// surfaced directly.
	Renewer SessionRenewer
	// HTTPClient is the shared transport. Optional; the default carries a
	// public-suffix-aware cookie jar so backend session cookies flow on
	// every call.
	HTTPClient *http.Client
	UserAgent  string
	// ExemptPaths overrides the default token-producing endpoints.
	ExemptPaths []string
	Logger      *slog.Logger
	Metrics     statsd.Sink
}

// Client is the HTTP request wrapper all service clients go through.
type Client struct {
	base      *url.URL
	store     *session.Store
	renewer   SessionRenewer
	http      *http.Client
	userAgent string
	exempt    map[string]struct{}
	logger    *slog.Logger
	sink      statsd.Sink
}

// NewClient constructs a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Store == nil {
		panic("api: Store is required")
	}

	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", opts.BaseURL)
	}

	exemptPaths := opts.ExemptPaths
	if exemptPaths == nil {
		exemptPaths = defaultExemptPaths
	}
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		base:      base,
		store:     opts.Store,
		renewer:   opts.Renewer,
		http:      resolveHTTPClient(opts.HTTPClient),
		userAgent: userAgent,
		exempt:    exempt,
		logger:    resolveLogger(opts.Logger),
		sink:      opts.Metrics,
	}, nil
}

// HTTPClient exposes the shared transport so the refresh coordinator can use
// the same cookie jar.
func (c *Client) HTTPClient() *http.Client { return c.http }

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.base.String() }

// Do performs one backend call. On a 401 for a non-exempt path it invokes
// the renewer exactly once and, if the session was re-established, retries
// the original request exactly once. The retry budget is fixed at one; a 401
// on the retry is returned as-is.
func (c *Client) Do(ctx context.Context, req Request) Result {
	exempt := c.isExempt(req.Path)

	res := c.dispatch(ctx, req, exempt, false)
	if res.Status != http.StatusUnauthorized || exempt || c.renewer == nil {
		return res
	}

	if !c.renewer.Refresh(ctx) {
		return res
	}
	return c.dispatch(ctx, req, exempt, true)
}

// Get is a convenience wrapper for GET requests.
func (c *Client) Get(ctx context.Context, path string, query url.Values) Result {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post is a convenience wrapper for POST requests with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// dispatch performs a single attempt and normalizes the outcome.
func (c *Client) dispatch(ctx context.Context, req Request, exempt, retried bool) Result {
	start := time.Now()

	httpReq, err := c.buildRequest(ctx, req, exempt)
	if err != nil {
		c.logger.WarnContext(ctx, "build request failed", "method", req.Method, "path", req.Path, "error", err)
		return Result{Status: 0, Error: err.Error()}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed", "method", req.Method, "path", req.Path, "error", err)
		metrics.EmitAPIRequest(c.sink, metrics.APIRequestMetric{
			Method: req.Method, Status: 0, Retry: retried, Duration: time.Since(start), Err: err,
		})
		return Result{Status: 0, Error: normalizeNetworkError(err)}
	}

	body, readErr := readBody(resp)
	if readErr != nil {
		c.logger.WarnContext(ctx, "read response body failed", "method", req.Method, "path", req.Path, "error", readErr)
	}

	if !exempt {
		c.harvestToken(ctx, resp, body)
	}

	metrics.EmitAPIRequest(c.sink, metrics.APIRequestMetric{
		Method: req.Method, Status: resp.StatusCode, Retry: retried, Duration: time.Since(start),
	})

	return buildResult(resp.StatusCode, body)
}

func (c *Client) buildRequest(ctx context.Context, req Request, exempt bool) (*http.Request, error) {
	target := *c.base
	target.Path = joinPath(c.base.Path, req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var reader io.Reader = http.NoBody
	contentType := ""
	switch {
	case len(req.RawBody) > 0:
		reader = bytes.NewReader(req.RawBody)
		contentType = req.ContentType
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(RequestIDHeaderName, uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	if mutatingMethod(req.Method) && !exempt {
		if token := c.store.Token(ctx); token != "" {
			httpReq.Header.Set(CSRFHeaderName, token)
		}
	}

	return httpReq, nil
}

// harvestToken keeps the stored CSRF token fresh from any response. The
// response header wins over a csrf/csrf_token field in a JSON body.
func (c *Client) harvestToken(ctx context.Context, resp *http.Response, body []byte) {
	token := resp.Header.Get(CSRFHeaderName)
	if token == "" && len(body) > 0 {
		var payload struct {
			Csrf      string `json:"csrf"`
			CsrfToken string `json:"csrf_token"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			token = payload.Csrf
			if token == "" {
				token = payload.CsrfToken
			}
		}
	}
	if token == "" || token == c.store.Token(ctx) {
		return
	}
	c.store.SetToken(ctx, token)
}

func (c *Client) isExempt(path string) bool {
	_, ok := c.exempt[path]
	return ok
}

func buildResult(status int, body []byte) Result {
	if status >= 200 && status < 300 {
		// Tolerate empty (204) and non-JSON bodies as success without data.
		if len(body) == 0 || !json.Valid(body) {
			return Result{OK: true, Status: status}
		}
		return Result{OK: true, Status: status, Data: json.RawMessage(body)}
	}
	return Result{OK: false, Status: status, Error: errorMessage(status, body)}
}

// errorMessage surfaces the backend's error payload, falling back to a
// synthesized message.
func errorMessage(status int, body []byte) string {
	if len(body) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}

// readBody reads up to maxResponseBytes, then drains and closes the body so
// the transport can reuse the connection.
func readBody(resp *http.Response) ([]byte, error) {
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	var drainErr, closeErr error
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		drainErr = fmt.Errorf("drain response body: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		closeErr = fmt.Errorf("close response body: %w", err)
	}

	if readErr != nil {
		readErr = fmt.Errorf("read response body: %w", readErr)
	}
	return data, errors.Join(readErr, drainErr, closeErr)
}

func normalizeNetworkError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return err.Error()
	}
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func joinPath(basePath, reqPath string) string {
	basePath = strings.TrimRight(basePath, "/")
	if !strings.HasPrefix(reqPath, "/") {
		reqPath = "/" + reqPath
	}
	return basePath + reqPath
}

// resolveHTTPClient returns the injected client or builds the default one
// with a cookie jar, since the backend session is cookie-based.
func resolveHTTPClient(hc *http.Client) *http.Client {
	if hc != nil {
		return hc
	}
	return NewHTTPClient(defaultTimeout)
}

// NewHTTPClient builds the shared transport used by the wrapper and the
// refresh coordinator: one cookie jar, one timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New does not fail with valid options; degrade to no jar.
		jar = nil
	}
	return &http.Client{Timeout: timeout, Jar: jar}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
