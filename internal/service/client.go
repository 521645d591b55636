package service

// Package service holds the domain service clients. Each one is a thin
// orchestration layer over the shared HTTP wrapper: validate inputs, call
// the backend, decode the payload into domain types, and map failures to
// application errors. Services depend on ports and the wrapper, never on
// adapters.

import (
	"context"
	"net/url"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/api"
)

// backend is the transport surface services consume. *api.Client satisfies
// it; tests may substitute stubs.
type backend interface {
	Do(ctx context.Context, req api.Request) api.Result
	Get(ctx context.Context, path string, query url.Values) api.Result
	Post(ctx context.Context, path string, body any) api.Result
}
