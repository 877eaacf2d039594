package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

func TestFilteringTracerProvider(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	filtered := observability.NewFilteringTracerProvider(tp)

	ctx := context.Background()

	_, span := filtered.Tracer("cypherast").Start(ctx, "cypherast.parse")
	span.End()

	_, span = filtered.Tracer("cypherast").Start(ctx, observability.SpanCacheLookup)
	span.End()

	_, span = filtered.Tracer(observability.TracerLSP).Start(ctx, "textDocument/hover")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "cypherast.parse", spans[0].Name)
}
