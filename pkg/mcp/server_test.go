package mcp

import (
	"context"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

func TestNewServer_Defaults(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{})

	assert.Same(t, cypherast.Default(), srv.engine)
	assert.NotNil(t, srv.logger)
	assert.Equal(t, []string{ToolNameFind, ToolNameKinds, ToolNameParse}, srv.ListToolNames())
}

func TestWithMetrics_CountsToolErrors(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	failing := withMetrics(red, ToolNameParse, func(
		context.Context, *mcpsdk.CallToolRequest, ParseInput,
	) (*mcpsdk.CallToolResult, ToolOutput, error) {
		return errorResult(errors.New("boom"))
	})
	passing := withMetrics(red, ToolNameParse, func(
		context.Context, *mcpsdk.CallToolRequest, ParseInput,
	) (*mcpsdk.CallToolResult, ToolOutput, error) {
		return textResult("ok")
	})

	ctx := context.Background()

	_, _, err = failing(ctx, nil, ParseInput{})
	require.NoError(t, err)

	_, _, err = passing(ctx, nil, ParseInput{})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byStatus := map[string]int64{}

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "cypherast.requests.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("op"))
				assert.Equal(t, "mcp."+ToolNameParse, op.AsString())

				status, _ := dp.Attributes.Value(attribute.Key("status"))
				byStatus[status.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{
		observability.StatusOK:    1,
		observability.StatusError: 1,
	}, byStatus)
}

func TestWithTracing_AppendsTraceID(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	handler := withTracing(tp.Tracer("test"), ToolNameKinds, func(
		context.Context, *mcpsdk.CallToolRequest, KindsInput,
	) (*mcpsdk.CallToolResult, ToolOutput, error) {
		return textResult("kinds")
	})

	result, _, err := handler(context.Background(), nil, KindsInput{})
	require.NoError(t, err)
	require.Len(t, result.Content, 2)

	traceText, ok := result.Content[1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, traceText.Text, traceIDMetaKey+"=")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mcp."+ToolNameKinds, spans[0].Name)
}

func TestWithWrappers_NilPassthrough(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := func(
		context.Context, *mcpsdk.CallToolRequest, KindsInput,
	) (*mcpsdk.CallToolResult, ToolOutput, error) {
		calls++

		return textResult("x")
	}

	wrapped := withMetrics(nil, ToolNameKinds, withTracing(nil, ToolNameKinds, handler))

	result, _, err := wrapped(context.Background(), nil, KindsInput{})
	require.NoError(t, err)
	assert.Len(t, result.Content, 1)
	assert.Equal(t, 1, calls)
}

func TestValidateQuery(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, validateQuery(""), ErrEmptyQuery)
	require.ErrorIs(t, validateQuery(" \n\t"), ErrEmptyQuery)
	require.NoError(t, validateQuery("RETURN 1"))
}

func TestHandleParse_InputLimit(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{Engine: cypherast.NewEngine(cypherast.WithMaxInputBytes(8))})

	result, _, err := srv.handleParse(context.Background(), nil, ParseInput{Query: "MATCH (n) RETURN n"})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, cypherast.ErrInputTooLarge.Error())
}
