package service

import (
	"context"
	"log/slog"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

const (
	healthPath  = "/api/v1/health"
	versionPath = "/api/v1/version"
)

// HealthServiceOptions groups dependencies for HealthService.
type HealthServiceOptions struct {
	Client backend
	Logger *slog.Logger
}

// HealthService probes backend liveness and build identity.
type HealthService struct {
	client backend
	logger *slog.Logger
}

// NewHealthService constructs a new HealthService.
func NewHealthService(opts HealthServiceOptions) *HealthService {
	if opts.Client == nil {
		panic("health service: Client is required")
	}
	return &HealthService{
		client: opts.Client,
		logger: resolveServiceLogger(opts.Logger),
	}
}

// Ping fetches the backend health probe. A reachable backend that reports
// itself degraded still decodes; only transport failures and non-2xx
// statuses are errors.
func (s *HealthService) Ping(ctx context.Context) (*model.HealthStatus, error) {
	res := s.client.Get(ctx, healthPath, nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var status model.HealthStatus
	if err := res.Decode(&status); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode health status")
	}
	return &status, nil
}

// Version fetches the backend build identity.
func (s *HealthService) Version(ctx context.Context) (*model.VersionInfo, error) {
	res := s.client.Get(ctx, versionPath, nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var info model.VersionInfo
	if err := res.Decode(&info); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode version info")
	}
	return &info, nil
}
