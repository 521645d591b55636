package service

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

func newScanService(t *testing.T, handler http.Handler) *ScanService {
	t.Helper()
	client, _ := newTestBackend(t, handler)
	return NewScanService(ScanServiceOptions{Client: client, Logger: discardLogger()})
}

func TestScanService_SubmitUploadSendsMultipart(t *testing.T) {
	var gotIdempotencyKey string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/scans", r.URL.Path)
		gotIdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		var fileNames []string
		var fileContents []string
		var metadata string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(part)
			require.NoError(t, err)
			switch part.FormName() {
			case "files":
				fileNames = append(fileNames, part.FileName())
				fileContents = append(fileContents, string(data))
			case "metadata":
				metadata = string(data)
			default:
				t.Fatalf("unexpected part %q", part.FormName())
			}
		}
		assert.Equal(t, []string{"package.json", "requirements.txt"}, fileNames)
		assert.Equal(t, []string{`{"dependencies":{}}`, "requests==2.0.0\n"}, fileContents)
		assert.JSONEq(t, `{"organization_id":"org-7"}`, metadata)

		writeJSON(t, w, http.StatusCreated, model.Scan{ID: "scan-1", Status: model.ScanStatusPending, Source: model.ScanSourceUpload})
	})

	svc := newScanService(t, handler)
	scan, err := svc.Submit(context.Background(), model.SubmitScanRequest{
		Files: []model.ManifestFile{
			{Name: "package.json", Content: []byte(`{"dependencies":{}}`)},
			{Name: "requirements.txt", Content: []byte("requests==2.0.0\n")},
		},
		OrganizationID: "org-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "scan-1", scan.ID)
	assert.Equal(t, model.ScanStatusPending, scan.Status)
	assert.NotEmpty(t, gotIdempotencyKey, "uploads must carry an idempotency key")
}

func TestScanService_SubmitRepoSendsJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"repo_url":"https://github.com/acme/app","ref":"main"}`, string(body))
		writeJSON(t, w, http.StatusCreated, model.Scan{ID: "scan-2", Status: model.ScanStatusPending, Source: model.ScanSourceRepository})
	})

	svc := newScanService(t, handler)
	scan, err := svc.Submit(context.Background(), model.SubmitScanRequest{
		RepoURL: "https://github.com/acme/app",
		Ref:     "main",
	})
	require.NoError(t, err)
	assert.Equal(t, "scan-2", scan.ID)
}

func TestScanService_SubmitRejectsInvalidRequest(t *testing.T) {
	svc := newScanService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid submissions must not reach the backend")
	}))

	_, err := svc.Submit(context.Background(), model.SubmitScanRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Submit(context.Background(), model.SubmitScanRequest{
		Files:   []model.ManifestFile{{Name: "go.mod", Content: []byte("module x\n")}},
		RepoURL: "https://github.com/acme/app",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestScanService_GetMapsBackendErrors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "scan not found"})
	})

	svc := newScanService(t, handler)
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "scan not found")
}

func TestScanService_GetRequiresID(t *testing.T) {
	svc := newScanService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("blank ids must not reach the backend")
	}))

	_, err := svc.Get(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestScanService_ListBuildsQuery(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "25", q.Get("limit"))
		assert.Equal(t, "50", q.Get("offset"))
		assert.Equal(t, "running", q.Get("status"))
		assert.Equal(t, "org-3", q.Get("organization_id"))
		writeJSON(t, w, http.StatusOK, model.ScanPage{
			Scans: []model.Scan{{ID: "scan-9", Status: model.ScanStatusRunning}},
			Total: 41,
		})
	})

	svc := newScanService(t, handler)
	status := model.ScanStatusRunning
	page, err := svc.List(context.Background(), model.ScanListOptions{
		Limit:          25,
		Offset:         50,
		Status:         &status,
		OrganizationID: "org-3",
	})
	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	require.Len(t, page.Scans, 1)
	assert.Equal(t, "scan-9", page.Scans[0].ID)
}

func TestScanService_ListRejectsUnknownStatus(t *testing.T) {
	svc := newScanService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid filters must not reach the backend")
	}))

	bogus := model.ScanStatus("sideways")
	_, err := svc.List(context.Background(), model.ScanListOptions{Status: &bogus})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestScanService_CancelUsesDelete(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	svc := newScanService(t, handler)
	require.NoError(t, svc.Cancel(context.Background(), "scan-4"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/scans/scan-4", gotPath)
}

func TestScanService_CancelSurfacesConflict(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, map[string]string{"error": "scan already finished"})
	})

	svc := newScanService(t, handler)
	err := svc.Cancel(context.Background(), "scan-4")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestScanService_ReportDecodesFindings(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/scans/scan-5/report", r.URL.Path)
		writeJSON(t, w, http.StatusOK, model.Report{
			ScanID: "scan-5",
			Status: model.ScanStatusCompleted,
			Summary: model.ReportSummary{
				Total:    2,
				Critical: 1,
				Low:      1,
			},
			Findings: []model.Finding{
				{ID: "f-1", Package: "lodash", Version: "4.17.19", Severity: model.SeverityCritical, FixVersion: "4.17.21"},
				{ID: "f-2", Package: "debug", Version: "2.6.8", Severity: model.SeverityLow},
			},
		})
	})

	svc := newScanService(t, handler)
	report, err := svc.Report(context.Background(), "scan-5")
	require.NoError(t, err)
	assert.Equal(t, "scan-5", report.ScanID)
	require.Len(t, report.Findings, 2)
	assert.True(t, report.Findings[0].Fixable())
	assert.False(t, report.Findings[1].Fixable())
}

func TestScanService_QueryReportFiltersFindings(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"scan_id": "scan-6",
			"findings": []map[string]any{
				{"id": "f-1", "package": "lodash", "severity": "critical"},
				{"id": "f-2", "package": "debug", "severity": "low"},
				{"id": "f-3", "package": "minimist", "severity": "critical"},
			},
		})
	})

	svc := newScanService(t, handler)
	out, err := svc.QueryReport(context.Background(), "scan-6", "findings[?severity=='critical'].package")
	require.NoError(t, err)
	assert.Equal(t, []any{"lodash", "minimist"}, out)
}

func TestScanService_QueryReportRejectsBadExpression(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]any{"findings": []any{}})
	})

	svc := newScanService(t, handler)
	_, err := svc.QueryReport(context.Background(), "scan-6", "findings[?")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, calls.Load(), "a bad expression must fail before any network call")

	_, err = svc.QueryReport(context.Background(), "scan-6", "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestScanService_WaitPollsUntilTerminal(t *testing.T) {
	var polls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		status := model.ScanStatusRunning
		if n >= 3 {
			status = model.ScanStatusCompleted
		}
		writeJSON(t, w, http.StatusOK, model.Scan{ID: "scan-7", Status: status})
	})

	svc := newScanService(t, handler)
	var seen []model.ScanStatus
	scan, err := svc.Wait(context.Background(), "scan-7", WaitOptions{
		Interval: 5 * time.Millisecond,
		Timeout:  5 * time.Second,
		OnPoll:   func(s model.Scan) { seen = append(seen, s.Status) },
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusCompleted, scan.Status)
	assert.Equal(t, int32(3), polls.Load())
	assert.Equal(t, []model.ScanStatus{
		model.ScanStatusRunning,
		model.ScanStatusRunning,
		model.ScanStatusCompleted,
	}, seen)
}

func TestScanService_WaitStopsAtFirstTerminalPoll(t *testing.T) {
	var polls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		writeJSON(t, w, http.StatusOK, model.Scan{ID: "scan-8", Status: model.ScanStatusFailed, Error: "worker crashed"})
	})

	svc := newScanService(t, handler)
	scan, err := svc.Wait(context.Background(), "scan-8", WaitOptions{Interval: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusFailed, scan.Status)
	assert.Equal(t, "worker crashed", scan.Error)
	assert.Equal(t, int32(1), polls.Load())
}

func TestScanService_WaitTimesOut(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, model.Scan{ID: "scan-9", Status: model.ScanStatusRunning})
	})

	svc := newScanService(t, handler)
	_, err := svc.Wait(context.Background(), "scan-9", WaitOptions{
		Interval: 5 * time.Millisecond,
		Timeout:  30 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err))
}

func TestScanService_WaitHonorsCallerCancellation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, model.Scan{ID: "scan-10", Status: model.ScanStatusRunning})
	})

	svc := newScanService(t, handler)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Wait(ctx, "scan-10", WaitOptions{
		Interval: time.Second,
		Timeout:  time.Minute,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCanceled(err))
}

func TestScanService_WaitSurfacesPollFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusServiceUnavailable, map[string]string{"error": "maintenance"})
	})

	svc := newScanService(t, handler)
	_, err := svc.Wait(context.Background(), "scan-11", WaitOptions{Interval: time.Millisecond})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	assert.True(t, strings.Contains(err.Error(), "maintenance"))
}
