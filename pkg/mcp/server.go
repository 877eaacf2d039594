// Package mcp exposes Cypher parsing as Model Context Protocol tools over
// stdio or any other MCP transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cypherast/pkg/cache"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

const (
	serverName           = "cypherast"
	defaultServerVersion = "dev"

	toolCount = 3

	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// ServerDeps holds injectable dependencies. Zero values select defaults.
type ServerDeps struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records per-tool RED metrics when set.
	Metrics *observability.REDMetrics

	// Tracer creates a span per tool call when set.
	Tracer trace.Tracer

	// Engine defaults to cypherast.Default().
	Engine *cypherast.Engine

	// Cache holds serialized forests for cypher_parse when set.
	Cache *cache.ForestCache

	// Version is reported in the MCP implementation info.
	Version string
}

// Server wraps the MCP SDK server with the Cypher tools registered.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	engine  *cypherast.Engine
	cache   *cache.ForestCache
	logger  *slog.Logger
}

// NewServer creates a server with every tool registered.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := deps.Engine
	if engine == nil {
		engine = cypherast.Default()
	}

	version := deps.Version
	if version == "" {
		version = defaultServerVersion
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: serverName, Version: version},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		engine:  engine,
		cache:   deps.Cache,
		logger:  logger,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of the registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run serves on stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	addTool(s, ToolNameParse, parseToolDescription, s.handleParse)
	addTool(s, ToolNameFind, findToolDescription, s.handleFind)
	addTool(s, ToolNameKinds, kindsToolDescription, s.handleKinds)
}

type toolHandler[Input any] func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error)

func addTool[Input any](s *Server, name, description string, handler toolHandler[Input]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, mcpsdk.ToolHandlerFor[Input, ToolOutput](withMetrics(s.metrics, name, withTracing(s.tracer, name, handler))))

	s.mu.Lock()
	s.tools = append(s.tools, name)
	s.mu.Unlock()
}

// withTracing opens a server span per call and appends the trace ID to
// sampled results.
func withTracing[Input any](tracer trace.Tracer, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if result != nil {
			span.SetAttributes(attribute.Bool("mcp.is_error", result.IsError))
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{
				Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String()),
			})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per call. Tool-level failures reported
// through IsError count as errors.
func withMetrics[Input any](metrics *observability.REDMetrics, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if metrics == nil {
		return handler
	}

	op := mcpSpanPrefix + toolName

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		done := metrics.TrackInflight(ctx, op)
		defer done()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, op, status, time.Since(start))

		return result, output, err
	}
}
