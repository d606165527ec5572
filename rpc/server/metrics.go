package server

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// unknownLabel replaces service and method names that did not resolve
const unknownLabel = "unknown"

// DispatchMetrics holds the per method request counters and durations
type DispatchMetrics struct {
	set *metrics.Set
}

// NewDispatchMetrics creates an empty metric set
func NewDispatchMetrics() *DispatchMetrics {
	return &DispatchMetrics{set: metrics.NewSet()}
}

// observe records one finished call
func (m *DispatchMetrics) observe(rc *RequestContext) {
	service, method := rc.Lookup, rc.Method
	if rc.MsgType != common.MsgTRequest {
		service, method = "", rc.MsgType.String()
	}

	status := "ok"
	if rc.Failed() {
		status = rc.Err.Kind.String()

		// names taken from unresolved calls would add a series per caller typo
		switch rc.Err.Kind {
		case common.ErrKindNotFoundService:
			service, method = unknownLabel, unknownLabel
		case common.ErrKindNotFoundMethod:
			method = unknownLabel
		}
	}

	m.set.GetOrCreateCounter(fmt.Sprintf(`gaea_requests_total{service=%q,method=%q,status=%q}`,
		service, method, status)).Inc()
	m.set.GetOrCreateHistogram(fmt.Sprintf(`gaea_request_duration_seconds{service=%q,method=%q}`,
		service, method)).Update(rc.Elapsed().Seconds())
}

// Requests returns the number of calls recorded for a method and status
func (m *DispatchMetrics) Requests(service, method, status string) uint64 {
	return m.set.GetOrCreateCounter(fmt.Sprintf(`gaea_requests_total{service=%q,method=%q,status=%q}`,
		service, method, status)).Get()
}

// WritePrometheus writes the metrics in Prometheus text format
func (m *DispatchMetrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}

// MetricsFilter returns a response filter recording every call in m
func MetricsFilter(m *DispatchMetrics) IFilter {
	return NewFilter("metrics", FilterResponseOnly, func(rc *RequestContext) error {
		m.observe(rc)
		return nil
	})
}
