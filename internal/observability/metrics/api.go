package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/k5602/Vulnera-Frontend-sub001/internal/observability/errors"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/observability/statsd"
)

// Refresh outcome constants for metric tagging.
const (
	RefreshOutcomeRenewed   = "renewed"
	RefreshOutcomeInvalid   = "invalid"
	RefreshOutcomeTransient = "transient"
	RefreshOutcomeEmpty     = "empty"
	RefreshOutcomeError     = "error"
)

// APIRequestMetric captures details about one backend request for metric
// emission. Status 0 denotes a network-level failure.
type APIRequestMetric struct {
	Method   string
	Status   int
	Retry    bool
	Duration time.Duration
	Err      error
}

// EmitAPIRequest emits standardised request metrics.
func EmitAPIRequest(sink statsd.Sink, in APIRequestMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"method":       in.Method,
		"status_class": statusClass(in.Status),
		"retry":        strconv.FormatBool(in.Retry),
	}

	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("api.request", 1, tags)

	if in.Duration > 0 {
		sink.Timing("api.request.duration", in.Duration, CloneTags(tags))
	}
}

// EmitSessionRefresh counts session refresh attempts by outcome.
func EmitSessionRefresh(sink statsd.Sink, outcome string) {
	if sink == nil {
		return
	}
	sink.Count("session.refresh", 1, map[string]string{"outcome": outcome})
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "network_error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
