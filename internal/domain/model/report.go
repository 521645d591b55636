package model

import (
	"strings"
	"time"
)

// Severity grades a finding. Values order from least to most severe.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Valid returns true if the Severity is a known grade.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is the same grade as min or more severe.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// ParseSeverity normalizes a severity string and reports whether it is known.
func ParseSeverity(value string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if s.Valid() {
		return s, true
	}
	return "", false
}

// Finding is a single vulnerability match in a scanned dependency.
type Finding struct {
	ID         string   `json:"id"`
	Package    string   `json:"package"`
	Version    string   `json:"version"`
	Ecosystem  string   `json:"ecosystem"`
	Severity   Severity `json:"severity"`
	CVEIDs     []string `json:"cve_ids,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	FixVersion string   `json:"fix_version,omitempty"`
	File       string   `json:"file,omitempty"`
}

// Fixable reports whether the finding carries an upgrade target.
func (f Finding) Fixable() bool { return strings.TrimSpace(f.FixVersion) != "" }

// ReportSummary aggregates finding counts per severity grade.
type ReportSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Report is the full result set of a completed scan.
type Report struct {
	ScanID      string        `json:"scan_id"`
	Status      ScanStatus    `json:"status"`
	Summary     ReportSummary `json:"summary"`
	Findings    []Finding     `json:"findings"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// FindingsAtLeast returns the findings at or above the given severity.
func (r *Report) FindingsAtLeast(min Severity) []Finding {
	out := make([]Finding, 0, len(r.Findings))
	for _, f := range r.Findings {
		if f.Severity.AtLeast(min) {
			out = append(out, f)
		}
	}
	return out
}
