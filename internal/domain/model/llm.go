package model

import (
	"errors"
	"strings"
)

// ExplainRequest asks the LLM gateway for a plain-language explanation of a
// finding. FindingID refers to a finding within the given scan; Question can
// narrow the focus.
type ExplainRequest struct {
	ScanID    string `json:"scan_id"`
	FindingID string `json:"finding_id"`
	Question  string `json:"question,omitempty"`
}

// Validate validates ExplainRequest.
func (r *ExplainRequest) Validate() error {
	if strings.TrimSpace(r.ScanID) == "" {
		return errors.New("scan_id is required")
	}
	if strings.TrimSpace(r.FindingID) == "" {
		return errors.New("finding_id is required")
	}
	return nil
}

// Explanation is the LLM gateway's answer to an ExplainRequest.
type Explanation struct {
	FindingID string `json:"finding_id"`
	Text      string `json:"text"`
	Model     string `json:"model,omitempty"`
}

// RemediationRequest asks for a concrete remediation suggestion.
type RemediationRequest struct {
	ScanID    string `json:"scan_id"`
	FindingID string `json:"finding_id"`
	Ecosystem string `json:"ecosystem,omitempty"`
}

// Validate validates RemediationRequest.
func (r *RemediationRequest) Validate() error {
	if strings.TrimSpace(r.ScanID) == "" {
		return errors.New("scan_id is required")
	}
	if strings.TrimSpace(r.FindingID) == "" {
		return errors.New("finding_id is required")
	}
	return nil
}

// Remediation is the LLM gateway's suggested fix.
type Remediation struct {
	FindingID string   `json:"finding_id"`
	Steps     []string `json:"steps"`
	Commands  []string `json:"commands,omitempty"`
	Model     string   `json:"model,omitempty"`
}
