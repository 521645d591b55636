package model

// HealthStatus is the backend's health probe response.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthy reports whether the backend considers itself up.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// VersionInfo identifies the running backend build.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	BuiltAt string `json:"built_at,omitempty"`
}
