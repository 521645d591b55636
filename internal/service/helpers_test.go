package service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/api"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/session"
)

// newTestBackend stands up an httptest server and a real request wrapper in
// front of it, so service tests exercise the same dispatch path production
// does (CSRF attachment, harvesting, error mapping).
func newTestBackend(t *testing.T, handler http.Handler) (*api.Client, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewStore(session.StoreOptions{Logger: discardLogger()})
	client, err := api.NewClient(api.ClientOptions{
		BaseURL: srv.URL,
		Store:   store,
		Logger:  discardLogger(),
	})
	require.NoError(t, err)
	return client, store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
