// This file is a documentation template and should not be compiled.
// It uses placeholder types (ExampleService, CreateExampleRequest, etc.) that don't exist.
// Use this as a reference when creating new services.
//
//go:build ignore

package service

// TEMPLATE.go - Service Layer Pattern Template
//
// This file demonstrates the standard pattern for all services in the service layer.
// Use this as a reference when creating new domain service clients.
//
// KEY PRINCIPLES:
// 1. All services use Options struct pattern for dependency injection
// 2. Options structs have ≤3 fields (use nested structs if more config needed)
// 3. All services have a constructor: NewXService(opts XServiceOptions) *XService
// 4. Services depend on the backend interface, not on *api.Client directly
// 5. Required dependencies are validated in constructor (panic if nil)
// 6. Optional dependencies are checked for nil before use
// 7. All methods accept context.Context as first parameter
// 8. Backend failures map to application errors via apperrors.FromStatus
// 9. Request validation and response decoding belong in the service layer
// 10. Services never import from internal/adapters, internal/session, or cmd

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 1: Options Struct (≤3 fields)
// ═══════════════════════════════════════════════════════════════════════════

// ExampleServiceOptions groups dependencies for ExampleService.
//
// RULES:
// - Maximum 3 fields per options struct
// - If you need more than 3 dependencies, create a nested config struct
// - The backend client is always the required dependency
// - Optional dependencies should be clearly documented
// - Use meaningful field names (not abbreviations unless obvious)
type ExampleServiceOptions struct {
	Client backend      // Required: HTTP wrapper surface
	Logger *slog.Logger // Optional: structured logger
	Cache  exampleCache // Optional: response cache (if needed)
}

// Example with nested config struct (when you have >3 fields):
//
// type ExampleServiceConfig struct {
//     PageSize     int
//     PollInterval time.Duration
// }
//
// type ExampleServiceOptions struct {
//     Client backend
//     Config ExampleServiceConfig  // Group related config
//     Logger *slog.Logger
// }

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 2: Optional Interface Dependencies
// ═══════════════════════════════════════════════════════════════════════════

// exampleCache defines the minimal behavior required from a cache.
// Define interfaces for optional dependencies to avoid tight coupling.
type exampleCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 3: Service Struct (private fields)
// ═══════════════════════════════════════════════════════════════════════════

// ExampleService provides the client surface for one backend resource group.
//
// RESPONSIBILITIES:
// - Request validation before any network call
// - Calling the backend through the shared HTTP wrapper
// - Decoding payloads into domain types from internal/domain/model
// - Mapping failed results to application errors
// - Client-side orchestration (chunking, polling, merging pages)
//
// DOES NOT:
// - Build raw *http.Request values (the wrapper owns transport concerns)
// - Touch session state or token refresh (the wrapper owns auth)
// - Import from internal/adapters or cmd (those layers depend on service)
type ExampleService struct {
	client backend      // Required dependency
	logger *slog.Logger // Resolved in constructor, never nil
	cache  exampleCache // Optional dependency
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 4: Constructor with Validation
// ═══════════════════════════════════════════════════════════════════════════

// NewExampleService constructs a new ExampleService.
//
// RULES:
// - Validate required dependencies (panic if nil)
// - Resolve the logger with resolveServiceLogger so methods never nil-check it
// - Optional dependencies can be nil (check before use)
// - Return pointer to service struct
// - Keep constructor simple (no network calls, no complex logic)
func NewExampleService(opts ExampleServiceOptions) *ExampleService {
	if opts.Client == nil {
		panic("example service: Client is required")
	}

	return &ExampleService{
		client: opts.Client,
		logger: resolveServiceLogger(opts.Logger),
		cache:  opts.Cache,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 5: Read Operations
// ═══════════════════════════════════════════════════════════════════════════

// Get retrieves an example entity by id.
//
// RULES:
// - Accept context.Context as first parameter
// - Validate and escape path inputs before building the URL
// - Map failed results with apperrors.FromStatus(res.Status, res.Error)
// - Decode with res.Decode and wrap decode failures as internal errors
// - Return domain types from internal/domain/model
func (s *ExampleService) Get(ctx context.Context, id string) (*model.Example, error) {
	if id == "" {
		return nil, apperrors.ValidationField("id", "id is required")
	}

	res := s.client.Get(ctx, "/api/v1/examples/"+url.PathEscape(id), nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var example model.Example
	if err := res.Decode(&example); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode example")
	}
	return &example, nil
}

// List retrieves a page of examples.
//
// Pagination parameters travel as query values; normalize them here so every
// caller gets the same bounds.
func (s *ExampleService) List(ctx context.Context, limit, offset int) ([]model.Example, error) {
	if limit <= 0 {
		limit = 20 // Default
	}
	if limit > 100 {
		limit = 100 // Backend max
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	res := s.client.Get(ctx, "/api/v1/examples", query)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var page struct {
		Items []model.Example `json:"items"`
	}
	if err := res.Decode(&page); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode example page")
	}
	return page.Items, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 6: Mutations
// ═══════════════════════════════════════════════════════════════════════════

// Create creates a new example entity.
//
// Request types from internal/domain/model carry their own Validate method;
// call it before the network so malformed input never leaves the client.
func (s *ExampleService) Create(ctx context.Context, req model.CreateExampleRequest) (*model.Example, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, "/api/v1/examples", req)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var example model.Example
	if err := res.Decode(&example); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode example")
	}

	s.logger.InfoContext(ctx, "example created", "id", example.ID)
	return &example, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 7: Client-Side Orchestration
// ═══════════════════════════════════════════════════════════════════════════

// EnrichAll demonstrates orchestration the backend does not offer: chunking a
// large request into backend-sized calls and merging the responses. This is
// where the service layer adds value beyond request/decode plumbing.
func (s *ExampleService) EnrichAll(ctx context.Context, ids []string) ([]model.Example, error) {
	const chunkSize = 50 // Backend per-call cap

	var merged []model.Example
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}

		chunk, err := s.enrichChunk(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		merged = append(merged, chunk...)
	}
	return merged, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 8: Private Helper Methods
// ═══════════════════════════════════════════════════════════════════════════

// Private helper methods should be lowercase and focused on single responsibility.
// These encapsulate implementation details and keep public methods clean.

func (s *ExampleService) enrichChunk(ctx context.Context, ids []string) ([]model.Example, error) {
	// Implementation details hidden from public API
	return nil, nil // Placeholder
}

func (s *ExampleService) getCached(ctx context.Context, id string) (*model.Example, error) {
	// Best-effort read; callers fall through to the backend on any error
	return nil, nil // Placeholder
}

// ═══════════════════════════════════════════════════════════════════════════
// NOTES FOR NEW SERVICES
// ═══════════════════════════════════════════════════════════════════════════
//
// When adding a service for a new backend resource group:
//
// 1. Add domain types and request validation to internal/domain/model
// 2. Create the service file here with Options pattern and constructor
// 3. Keep path constants at the top of the file
// 4. Wire the service into bootstrap.BuildApp and expose it on App
// 5. Add a command (or subcommand group) under cmd/vulnera
// 6. Write tests against a httptest backend via newTestBackend
//
// Common pitfalls:
// - Forgetting to validate required dependencies in constructor
// - Mapping failures by hand instead of apperrors.FromStatus
// - Forgetting url.PathEscape on ids that travel in the path
// - Creating methods with >3 parameters (use request structs)
// - Not checking optional dependencies for nil before use
