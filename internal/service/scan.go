package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/api"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

const (
	scansPath = "/api/v1/scans"

	defaultWaitInterval = 2 * time.Second
	defaultWaitTimeout  = 15 * time.Minute
)

// IdempotencyKeyHeader deduplicates scan submissions retried by the wrapper.
const IdempotencyKeyHeader = "Idempotency-Key"

// ScanServiceOptions groups dependencies for ScanService.
type ScanServiceOptions struct {
	Client backend
	Logger *slog.Logger
}

// ScanService drives scan jobs end to end: submission, status reads,
// cancellation, report retrieval, and terminal-status polling.
type ScanService struct {
	client backend
	logger *slog.Logger
}

// NewScanService constructs a new ScanService.
func NewScanService(opts ScanServiceOptions) *ScanService {
	if opts.Client == nil {
		panic("scan service: Client is required")
	}
	return &ScanService{
		client: opts.Client,
		logger: resolveServiceLogger(opts.Logger),
	}
}

// Submit creates a scan from uploaded manifest files or a repository URL.
// Uploads go out as multipart; repo scans as JSON. Every submission carries
// an idempotency key so a 401-triggered retry cannot enqueue twice.
func (s *ScanService) Submit(ctx context.Context, req model.SubmitScanRequest) (*model.Scan, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	apiReq := api.Request{
		Method: http.MethodPost,
		Path:   scansPath,
		Header: http.Header{IdempotencyKeyHeader: []string{uuid.NewString()}},
	}
	if len(req.Files) > 0 {
		raw, contentType, err := encodeManifestUpload(req)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode manifest upload")
		}
		apiReq.RawBody = raw
		apiReq.ContentType = contentType
	} else {
		apiReq.Body = req
	}

	res := s.client.Do(ctx, apiReq)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var scan model.Scan
	if err := res.Decode(&scan); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode submitted scan")
	}
	s.logger.InfoContext(ctx, "scan submitted", "scan_id", scan.ID, "source", scan.Source)
	return &scan, nil
}

// Get fetches a single scan by id.
func (s *ScanService) Get(ctx context.Context, id string) (*model.Scan, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "scan id is required")
	}

	res := s.client.Get(ctx, scansPath+"/"+url.PathEscape(id), nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var scan model.Scan
	if err := res.Decode(&scan); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode scan")
	}
	return &scan, nil
}

// List returns one page of scans matching the options.
func (s *ScanService) List(ctx context.Context, opts model.ScanListOptions) (*model.ScanPage, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Status != nil {
		if !opts.Status.Valid() {
			return nil, apperrors.ValidationField("status", fmt.Sprintf("invalid scan status %q", *opts.Status))
		}
		query.Set("status", string(*opts.Status))
	}
	if opts.OrganizationID != "" {
		query.Set("organization_id", opts.OrganizationID)
	}

	res := s.client.Get(ctx, scansPath, query)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}

	var page model.ScanPage
	if err := res.Decode(&page); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode scan page")
	}
	return &page, nil
}

// Cancel asks the backend to stop a scan. Cancelling a scan that already
// reached a terminal state is reported as a conflict by the backend and
// surfaced unchanged.
func (s *ScanService) Cancel(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "scan id is required")
	}

	res := s.client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   scansPath + "/" + url.PathEscape(id),
	})
	if !res.OK {
		return apperrors.FromStatus(res.Status, res.Error)
	}
	s.logger.InfoContext(ctx, "scan cancelled", "scan_id", id)
	return nil
}

// Report fetches the full finding report of a completed scan.
func (s *ScanService) Report(ctx context.Context, id string) (*model.Report, error) {
	raw, err := s.reportRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	var report model.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode report")
	}
	return &report, nil
}

// QueryReport evaluates a JMESPath expression against the raw report
// document and returns the matching subset. The expression is compiled
// before the report is fetched so a bad expression fails without a
// network round trip.
func (s *ScanService) QueryReport(ctx context.Context, id, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, apperrors.ValidationField("query", "query expression is required")
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid query expression")
	}

	raw, err := s.reportRaw(ctx, id)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode report")
	}
	out, err := jmespath.Search(expr, doc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "evaluate query expression")
	}
	return out, nil
}

func (s *ScanService) reportRaw(ctx context.Context, id string) (json.RawMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "scan id is required")
	}

	res := s.client.Get(ctx, scansPath+"/"+url.PathEscape(id)+"/report", nil)
	if !res.OK {
		return nil, apperrors.FromStatus(res.Status, res.Error)
	}
	if len(res.Data) == 0 {
		return nil, apperrors.Internal("backend returned an empty report")
	}
	return res.Data, nil
}

// WaitOptions tunes the polling loop of Wait.
type WaitOptions struct {
	// Interval between status polls. Defaults to 2s.
	Interval time.Duration
	// Timeout bounds the whole wait. Defaults to 15m.
	Timeout time.Duration
	// OnPoll, when set, observes every scan snapshot as it arrives.
	OnPoll func(model.Scan)
}

// Wait polls the scan until it reaches a terminal status. The final snapshot
// is returned even when the scan failed; callers inspect Status themselves.
// Deadline exhaustion yields a timeout error, caller cancellation a canceled
// error.
func (s *ScanService) Wait(ctx context.Context, id string, opts WaitOptions) (*model.Scan, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultWaitInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		scan, err := s.Get(waitCtx, id)
		if err != nil {
			// A deadline that lands mid-poll surfaces as a transport
			// failure; report it as the wait outcome instead.
			if waitCtx.Err() != nil {
				return nil, waitError(ctx, waitCtx, id)
			}
			return nil, err
		}
		if opts.OnPoll != nil {
			opts.OnPoll(*scan)
		}
		if scan.Status.Terminal() {
			return scan, nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-waitCtx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return nil, waitError(ctx, waitCtx, id)
		case <-timer.C:
		}
	}
}

// waitError distinguishes the caller giving up from the wait deadline
// expiring. The parent ctx wins when both are done.
func waitError(parent, waitCtx context.Context, id string) error {
	if parent.Err() != nil {
		return apperrors.Wrap(parent.Err(), apperrors.ErrCodeCanceled, "wait for scan "+id)
	}
	return apperrors.Wrap(waitCtx.Err(), apperrors.ErrCodeTimeout, "scan "+id+" did not finish in time")
}

// encodeManifestUpload builds the multipart body for a file-based scan:
// one "files" part per manifest plus a "metadata" JSON part carrying the
// non-file fields.
func encodeManifestUpload(req model.SubmitScanRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range req.Files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %q: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("write form file %q: %w", f.Name, err)
		}
	}

	meta, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("marshal scan metadata: %w", err)
	}
	if err := w.WriteField("metadata", string(meta)); err != nil {
		return nil, "", fmt.Errorf("write metadata field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
