package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// reCVEID matches the canonical CVE identifier format.
var reCVEID = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

// NormalizeCVEID uppercases and trims a CVE identifier, reporting whether
// the result is well formed.
func NormalizeCVEID(id string) (string, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	return id, reCVEID.MatchString(id)
}

// CVERecord is the enriched detail for a single CVE.
type CVERecord struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary,omitempty"`
	CVSSScore   float64    `json:"cvss_score,omitempty"`
	CVSSVector  string     `json:"cvss_vector,omitempty"`
	EPSSScore   float64    `json:"epss_score,omitempty"`
	Severity    Severity   `json:"severity,omitempty"`
	References  []string   `json:"references,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
}

// BatchEnrichRequest asks for enrichment of multiple CVE ids at once.
type BatchEnrichRequest struct {
	IDs []string `json:"ids"`
}

// Validate validates BatchEnrichRequest and normalizes the ids in place.
func (r *BatchEnrichRequest) Validate() error {
	if len(r.IDs) == 0 {
		return errors.New("at least one CVE id is required")
	}
	for i, id := range r.IDs {
		normalized, ok := NormalizeCVEID(id)
		if !ok {
			return errors.New("invalid CVE id: " + id)
		}
		r.IDs[i] = normalized
	}
	return nil
}

// BatchEnrichResponse carries the records found for a batch request.
// Unknown ids are simply absent from Records.
type BatchEnrichResponse struct {
	Records []CVERecord `json:"records"`
	Missing []string    `json:"missing,omitempty"`
}
