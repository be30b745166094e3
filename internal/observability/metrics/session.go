package metrics

import (
	"time"

	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// EmitTransition records a resolver state change.
func EmitTransition(sink statsd.Sink, from, to domainsession.State, trigger string) {
	if sink == nil {
		return
	}
	sink.Count("session.transition", 1, map[string]string{
		"from":    string(from),
		"to":      string(to),
		"trigger": trigger,
	})
}

// EmitRedirect records the outcome of decoding one deep link.
func EmitRedirect(sink statsd.Sink, source domainsession.EventSource, res domainsession.DecodeResult) {
	if sink == nil {
		return
	}
	tags := map[string]string{"source": string(source)}
	switch r := res.(type) {
	case domainsession.Valid:
		tags["result"] = ResultSuccess
	case domainsession.Invalid:
		tags["result"] = ResultNoop
		tags["reason"] = string(r.Reason)
	}
	sink.Count("session.redirect", 1, tags)
}

// RequestMetric captures one backend call.
type RequestMetric struct {
	Operation string
	Duration  time.Duration
	Err       error
}

// EmitRequest records a backend API call with its latency.
func EmitRequest(sink statsd.Sink, in RequestMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"op": in.Operation, "result": ResultSuccess}
	if in.Err != nil {
		tags["result"] = ResultError
		if code := apperrors.GetCode(in.Err); code != "" {
			tags["error_code"] = string(code)
		}
	}
	sink.Count("backend.request", 1, tags)
	if in.Duration > 0 {
		sink.Timing("backend.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
