package service

import (
	"context"
	"log/slog"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

const (
	explainPath     = "/api/v1/llm/explain"
	remediationPath = "/api/v1/llm/remediation"
)

// LLMServiceOptions groups dependencies for LLMService.
type LLMServiceOptions struct {
	Client backend
	Logger *slog.Logger
}

// LLMService fronts the backend's LLM gateway for finding explanations and
// remediation suggestions. Responses can take a while; callers bound them
// with ctx deadlines.
type LLMService struct {
	client backend
	logger *slog.Logger
}

// NewLLMService constructs a new LLMService.
func NewLLMService(opts LLMServiceOptions) *LLMService {
	if opts.Client == nil {
		panic("llm service: Client is required")
	}
	return &LLMService{
		client: opts.Client,
		logger: resolveServiceLogger(opts.Logger),
	}
}

// ExplainFinding asks for a plain-language explanation of one finding.
func (s *LLMService) ExplainFinding(ctx context.Context, req model.ExplainRequest) (*model.Explanation, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, explainPath, req)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var out model.Explanation
	if err := res.Decode(&out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode explanation")
	}
	s.logger.DebugContext(ctx, "finding explained", "scan_id", req.ScanID, "finding_id", req.FindingID, "model", out.Model)
	return &out, nil
}

// SuggestRemediation asks for concrete upgrade or mitigation steps.
func (s *LLMService) SuggestRemediation(ctx context.Context, req model.RemediationRequest) (*model.Remediation, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	res := s.client.Post(ctx, remediationPath, req)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var out model.Remediation
	if err := res.Decode(&out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode remediation")
	}
	return &out, nil
}
