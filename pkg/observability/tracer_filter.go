package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Names of tracers and spans dropped unless Config.TraceVerbose is set.
const (
	// TracerLSP is the tracer for per-keystroke language server requests.
	TracerLSP = "cypherast.lsp"
	// SpanCacheLookup wraps a single cache probe.
	SpanCacheLookup = "cypherast.cache.lookup"
)

// filteringTracerProvider hands out no-op tracers for suppressed tracer names
// and no-op spans for suppressed span names.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate          trace.TracerProvider
	noop              trace.TracerProvider
	suppressedTracers map[string]bool
	suppressedSpans   map[string]bool
}

// NewFilteringTracerProvider wraps delegate so that high-volume spans are
// replaced with no-op spans while request-level spans are kept.
func NewFilteringTracerProvider(delegate trace.TracerProvider) trace.TracerProvider {
	return &filteringTracerProvider{
		delegate:          delegate,
		noop:              nooptrace.NewTracerProvider(),
		suppressedTracers: map[string]bool{TracerLSP: true},
		suppressedSpans:   map[string]bool{SpanCacheLookup: true},
	}
}

// Tracer implements trace.TracerProvider.
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if f.suppressedTracers[name] {
		return f.noop.Tracer(name, opts...)
	}

	return &filteringTracer{
		delegate: f.delegate.Tracer(name, opts...),
		noop:     f.noop.Tracer(name, opts...),
		suppress: f.suppressedSpans,
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
	suppress map[string]bool
}

// Start implements trace.Tracer.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if f.suppress[name] {
		return f.noop.Start(ctx, name, opts...)
	}

	return f.delegate.Start(ctx, name, opts...)
}
