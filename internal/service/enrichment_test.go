package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

func newEnrichmentService(t *testing.T, handler http.Handler) *EnrichmentService {
	t.Helper()
	client, _ := newTestBackend(t, handler)
	return NewEnrichmentService(EnrichmentServiceOptions{Client: client, Logger: discardLogger()})
}

func TestEnrichmentService_CVENormalizesID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/enrichment/cve/CVE-2021-23337", r.URL.Path)
		writeJSON(t, w, http.StatusOK, model.CVERecord{
			ID:        "CVE-2021-23337",
			Summary:   "Command injection in lodash",
			CVSSScore: 7.2,
			Severity:  model.SeverityHigh,
		})
	})

	svc := newEnrichmentService(t, handler)
	record, err := svc.CVE(context.Background(), "  cve-2021-23337 ")
	require.NoError(t, err)
	assert.Equal(t, "CVE-2021-23337", record.ID)
	assert.InEpsilon(t, 7.2, record.CVSSScore, 0.001)
}

func TestEnrichmentService_CVERejectsMalformedID(t *testing.T) {
	svc := newEnrichmentService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("malformed ids must not reach the backend")
	}))

	for _, id := range []string{"", "CVE-21-1", "GHSA-xxxx", "CVE-2021-12"} {
		_, err := svc.CVE(context.Background(), id)
		require.Error(t, err, "id %q", id)
		assert.True(t, apperrors.IsValidation(err), "id %q", id)
	}
}

func TestEnrichmentService_BatchSingleChunk(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/enrichment/cve/batch", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ids":["CVE-2021-23337","CVE-2020-8203"]}`, string(body))
		writeJSON(t, w, http.StatusOK, model.BatchEnrichResponse{
			Records: []model.CVERecord{{ID: "CVE-2021-23337"}},
			Missing: []string{"CVE-2020-8203"},
		})
	})

	svc := newEnrichmentService(t, handler)
	out, err := svc.Batch(context.Background(), []string{"cve-2021-23337", "CVE-2020-8203"})
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, []string{"CVE-2020-8203"}, out.Missing)
}

func TestEnrichmentService_BatchChunksAtCap(t *testing.T) {
	var calls atomic.Int32
	var sizes []int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req model.BatchEnrichRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sizes = append(sizes, len(req.IDs))

		records := make([]model.CVERecord, 0, len(req.IDs))
		for _, id := range req.IDs {
			records = append(records, model.CVERecord{ID: id})
		}
		writeJSON(t, w, http.StatusOK, model.BatchEnrichResponse{Records: records})
	})

	ids := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		ids = append(ids, fmt.Sprintf("CVE-2024-%04d", i+1000))
	}

	svc := newEnrichmentService(t, handler)
	out, err := svc.Batch(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []int{50, 50, 20}, sizes)
	assert.Len(t, out.Records, 120)
	assert.Equal(t, "CVE-2024-1000", out.Records[0].ID)
	assert.Equal(t, "CVE-2024-1119", out.Records[119].ID)
}

func TestEnrichmentService_BatchDoesNotMutateCallerSlice(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, model.BatchEnrichResponse{})
	})

	ids := []string{"cve-2021-23337"}
	svc := newEnrichmentService(t, handler)
	_, err := svc.Batch(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, "cve-2021-23337", ids[0], "normalization must work on a copy")
}

func TestEnrichmentService_BatchValidatesAllIDs(t *testing.T) {
	svc := newEnrichmentService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid batches must not reach the backend")
	}))

	_, err := svc.Batch(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Batch(context.Background(), []string{"CVE-2021-23337", "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestEnrichmentService_BatchStopsOnChunkFailure(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(t, w, http.StatusOK, model.BatchEnrichResponse{})
			return
		}
		writeJSON(t, w, http.StatusBadGateway, map[string]string{"error": "enrichment upstream down"})
	})

	ids := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("CVE-2024-%04d", i+1000))
	}

	svc := newEnrichmentService(t, handler)
	_, err := svc.Batch(context.Background(), ids)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, err.Error(), "enrichment upstream down")
}
