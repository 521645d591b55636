package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

const (
	cvePath      = "/api/v1/enrichment/cve"
	cveBatchPath = "/api/v1/enrichment/cve/batch"

	// maxBatchIDs is the backend's per-call cap; larger requests are
	// chunked client-side.
	maxBatchIDs = 50
)

// EnrichmentServiceOptions groups dependencies for EnrichmentService.
type EnrichmentServiceOptions struct {
	Client backend
	Logger *slog.Logger
}

// EnrichmentService looks up CVE intelligence (CVSS, EPSS, references) for
// findings.
type EnrichmentService struct {
	client backend
	logger *slog.Logger
}

// NewEnrichmentService constructs a new EnrichmentService.
func NewEnrichmentService(opts EnrichmentServiceOptions) *EnrichmentService {
	if opts.Client == nil {
		panic("enrichment service: Client is required")
	}
	return &EnrichmentService{
		client: opts.Client,
		logger: resolveServiceLogger(opts.Logger),
	}
}

// CVE fetches the enriched record for one CVE id. The id is normalized
// before the lookup; malformed ids fail without a network call.
func (s *EnrichmentService) CVE(ctx context.Context, id string) (*model.CVERecord, error) {
	normalized, ok := model.NormalizeCVEID(id)
	if !ok {
		return nil, apperrors.ValidationField("id", "invalid CVE id: "+id)
	}

	res := s.client.Get(ctx, cvePath+"/"+url.PathEscape(normalized), nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var record model.CVERecord
	if err := res.Decode(&record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode CVE record")
	}
	return &record, nil
}

// Batch enriches many CVE ids in one call, splitting the request into
// backend-sized chunks and merging the responses. Ids the backend does not
// know end up in Missing.
func (s *EnrichmentService) Batch(ctx context.Context, ids []string) (*model.BatchEnrichResponse, error) {
	req := model.BatchEnrichRequest{IDs: append([]string(nil), ids...)}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	merged := &model.BatchEnrichResponse{}
	for start := 0; start < len(req.IDs); start += maxBatchIDs {
		end := start + maxBatchIDs
		if end > len(req.IDs) {
			end = len(req.IDs)
		}

		res := s.client.Post(ctx, cveBatchPath, model.BatchEnrichRequest{IDs: req.IDs[start:end]})
		if !res.OK {
			return nil, apperrors.FromStatus(res.Status, res.Error)
		}

		var chunk model.BatchEnrichResponse
		if err := res.Decode(&chunk); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode batch enrichment")
		}
		merged.Records = append(merged.Records, chunk.Records...)
		merged.Missing = append(merged.Missing, chunk.Missing...)
	}

	s.logger.DebugContext(ctx, "batch enrichment done",
		"requested", len(req.IDs), "found", len(merged.Records), "missing", len(merged.Missing))
	return merged, nil
}
