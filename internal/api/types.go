// Package api is the single choke point for backend calls: it owns CSRF
// attachment, cookie credentials, opportunistic token harvesting, and the
// 401 refresh-and-retry-once recovery around every request.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// Request describes one backend call. Path is joined to the client's base
// URL. When Body is non-nil it is JSON-encoded; RawBody takes precedence and
// is sent verbatim with ContentType (multipart uploads use this).
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	RawBody     []byte
	ContentType string
	Header      http.Header
}

// Result is the typed outcome of a request. Expected failures are encoded in
// it rather than raised: non-2xx responses carry Status and Error, and
// network-level failures are normalized to Status 0. A 2xx with an empty or
// non-JSON body yields OK with nil Data.
type Result struct {
	OK     bool
	Status int
	Data   json.RawMessage
	Error  string
}

// ErrNoData is returned by Decode when the response carried no body.
var ErrNoData = errors.New("api: response carried no data")

// Decode unmarshals the result data into v.
func (r Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return ErrNoData
	}
	return json.Unmarshal(r.Data, v)
}
