package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "cypherast.requests.total"
	metricRequestDuration  = "cypherast.request.duration.seconds"
	metricErrorsTotal      = "cypherast.errors.total"
	metricInflightRequests = "cypherast.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK labels a successful request.
	StatusOK = "ok"
	// StatusError labels a failed request.
	StatusError = "error"
)

// durationBucketBoundaries covers 100µs to 10s. Most statements parse in well
// under a millisecond; large scripts and cold caches make up the tail.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10}

// REDMetrics holds the rate, error and duration instruments shared by the
// HTTP, MCP and LSP front ends.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED instruments from mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &REDMetrics{
		requestsTotal:    b.counter(metricRequestsTotal, "Total number of requests", "{request}"),
		requestDuration:  b.histogram(metricRequestDuration, "Request duration in seconds", "s", durationBucketBoundaries...),
		errorsTotal:      b.counter(metricErrorsTotal, "Total number of errors", "{error}"),
		inflightRequests: b.upDownCounter(metricInflightRequests, "Number of in-flight requests", "{request}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// RecordRequest records one completed request. A nil receiver is a no-op.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	if rm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight counter for op and returns the
// matching decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	if rm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// Status maps an error to StatusOK or StatusError.
func Status(err error) string {
	if err != nil {
		return StatusError
	}

	return StatusOK
}
