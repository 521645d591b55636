package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
)

const (
	defaultCallbackAddr = "127.0.0.1:0"
	defaultCallbackPath = "/callback"
)

// loginCompletePage is shown in the browser once the provider redirects
// back; the CLI finishes the login in the terminal.
const loginCompletePage = `<!doctype html>
<html>
<head><title>Vulnera</title></head>
<body>
<p>Login received. You can close this tab and return to the terminal.</p>
</body>
</html>
`

type callbackOutcome struct {
	result ports.CallbackResult
	err    error
}

// CallbackListener serves the OAuth2 redirect endpoint on a loopback port
// for the duration of one login flow.
type CallbackListener struct {
	server   *http.Server
	listener net.Listener
	path     string
	logger   *slog.Logger

	outcomes chan callbackOutcome
	once     sync.Once
}

var _ ports.CallbackListener = (*CallbackListener)(nil)

// Listen binds a listener with default options. It satisfies
// ports.ListenCallback.
func Listen() (ports.CallbackListener, error) {
	return NewCallbackListener(CallbackOptions{})
}

// CallbackOptions configures the listener.
type CallbackOptions struct {
	// Addr to bind. Defaults to "127.0.0.1:0", picking an ephemeral port.
	Addr string
	// Path of the redirect endpoint. Defaults to "/callback".
	Path string
	// Logger for serve errors. Optional.
	Logger *slog.Logger
}

// NewCallbackListener binds the loopback listener and starts serving. Call
// Close once the flow finishes.
func NewCallbackListener(opts CallbackOptions) (*CallbackListener, error) {
	addr := opts.Addr
	if addr == "" {
		addr = defaultCallbackAddr
	}
	path := opts.Path
	if path == "" {
		path = defaultCallbackPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind callback listener: %w", err)
	}

	l := &CallbackListener{
		listener: ln,
		path:     path,
		logger:   logger,
		outcomes: make(chan callbackOutcome, 1),
	}

	router := mux.NewRouter()
	router.HandleFunc(path, l.handleCallback).Methods(http.MethodGet)

	l.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if serveErr := l.server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Warn("callback listener stopped", "error", serveErr)
		}
	}()

	return l, nil
}

// RedirectURL returns the URL to register as the flow's redirect target.
func (l *CallbackListener) RedirectURL() string {
	return fmt.Sprintf("http://%s%s", l.listener.Addr().String(), l.path)
}

// Wait blocks until the provider redirects back or ctx expires.
func (l *CallbackListener) Wait(ctx context.Context) (ports.CallbackResult, error) {
	select {
	case out := <-l.outcomes:
		return out.result, out.err
	case <-ctx.Done():
		return ports.CallbackResult{}, ctx.Err()
	}
}

// Close stops the listener. Safe to call more than once.
func (l *CallbackListener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := l.server.Shutdown(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (l *CallbackListener) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = errCode
		}
		l.deliver(callbackOutcome{err: fmt.Errorf("provider rejected login: %s", desc)})
		http.Error(w, "login failed: "+desc, http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	l.deliver(callbackOutcome{result: ports.CallbackResult{
		Code:  code,
		State: q.Get("state"),
	}})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(loginCompletePage))
}

// deliver hands the first outcome to Wait; later hits are ignored.
func (l *CallbackListener) deliver(out callbackOutcome) {
	l.once.Do(func() {
		l.outcomes <- out
	})
}
