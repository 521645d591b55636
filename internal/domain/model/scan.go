// Package model defines the wire-level data types exchanged with the Vulnera backend.
package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ScanStatus represents the lifecycle state of a scan job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ScanStatus string

const (
	// ScanStatusPending indicates the scan is queued and waiting for a worker.
	ScanStatusPending ScanStatus = "pending"
	// ScanStatusRunning indicates the scan is currently being processed.
	ScanStatusRunning ScanStatus = "running"
	// ScanStatusCompleted indicates the scan finished and a report is available.
	ScanStatusCompleted ScanStatus = "completed"
	// ScanStatusFailed indicates the scan could not be completed.
	ScanStatusFailed ScanStatus = "failed"
	// ScanStatusCancelled indicates the scan was cancelled before completion.
	ScanStatusCancelled ScanStatus = "cancelled"
)

// Valid returns true if the ScanStatus is a known state.
func (s ScanStatus) Valid() bool {
	switch s {
	case ScanStatusPending, ScanStatusRunning, ScanStatusCompleted, ScanStatusFailed, ScanStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is final and polling may stop.
func (s ScanStatus) Terminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusFailed || s == ScanStatusCancelled
}

// UnmarshalText implements encoding.TextUnmarshaler so the status can be
// parsed from flags and query parameters.
func (s *ScanStatus) UnmarshalText(text []byte) error {
	v := ScanStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if v.Valid() {
		*s = v
		return nil
	}
	return fmt.Errorf("invalid ScanStatus: %q", string(text))
}

// ScanSource identifies what kind of input a scan was created from.
type ScanSource string

const (
	// ScanSourceUpload denotes a scan of uploaded dependency manifests.
	ScanSourceUpload ScanSource = "upload"
	// ScanSourceRepository denotes a scan of a remote repository URL.
	ScanSourceRepository ScanSource = "repository"
)

// Valid returns true if the ScanSource is supported.
func (s ScanSource) Valid() bool {
	return s == ScanSourceUpload || s == ScanSourceRepository
}

// Scan represents a scan job as reported by the backend.
type Scan struct {
	ID             string     `json:"id"`
	Status         ScanStatus `json:"status"`
	Source         ScanSource `json:"source"`
	Target         string     `json:"target,omitempty"`
	OrganizationID string     `json:"organization_id,omitempty"`
	FindingCount   int        `json:"finding_count"`
	CriticalCount  int        `json:"critical_count"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// SubmitScanRequest represents parameters to create a scan. Exactly one of
// Files or RepoURL must be provided.
type SubmitScanRequest struct {
	Files          []ManifestFile `json:"-"`
	RepoURL        string         `json:"repo_url,omitempty"`
	Ref            string         `json:"ref,omitempty"`
	OrganizationID string         `json:"organization_id,omitempty"`
}

// ManifestFile is a dependency manifest uploaded for scanning.
type ManifestFile struct {
	Name    string
	Content []byte
}

// Validate validates SubmitScanRequest.
func (r *SubmitScanRequest) Validate() error {
	hasFiles := len(r.Files) > 0
	hasRepo := strings.TrimSpace(r.RepoURL) != ""
	if hasFiles == hasRepo {
		return errors.New("exactly one of files or repo_url must be provided")
	}
	for _, f := range r.Files {
		if strings.TrimSpace(f.Name) == "" {
			return errors.New("manifest file name cannot be empty")
		}
		if len(f.Content) == 0 {
			return fmt.Errorf("manifest file %q is empty", f.Name)
		}
	}
	if hasRepo {
		u, err := url.Parse(r.RepoURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("repo_url %q is not an absolute URL", r.RepoURL)
		}
	}
	return nil
}

// ScanListOptions controls paging and filtering for listing scans.
type ScanListOptions struct {
	Limit          int
	Offset         int
	Status         *ScanStatus // exact match
	OrganizationID string      // scope results to one organization
}

// ScanPage is one page of scan results.
type ScanPage struct {
	Scans []Scan `json:"scans"`
	Total int    `json:"total"`
}
