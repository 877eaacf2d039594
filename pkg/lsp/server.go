// Package lsp provides a Language Server Protocol server for Cypher files.
// It publishes syntax diagnostics, shows the syntax node under the cursor on
// hover and completes clause keywords.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

const (
	serverName     = "cypherast"
	diagnosticFrom = "cypher"

	methodPublishDiagnostics = "textDocument/publishDiagnostics"
)

// DocumentStore is a thread-safe store for document contents keyed by URI.
type DocumentStore struct {
	documents map[string]string // URI -> content.
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *DocumentStore) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *DocumentStore) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Deps holds injectable dependencies. Zero values select defaults.
type Deps struct {
	// Engine is used for hover and diagnostics. Nil selects a recovering
	// engine so every malformed statement is reported.
	Engine *cypherast.Engine
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
	// Version is reported in the initialize response.
	Version string
}

// Server implements the Cypher language server.
type Server struct {
	store   *DocumentStore
	handler protocol.Handler
	engine  *cypherast.Engine
	logger  *slog.Logger
	tracer  trace.Tracer
	version string
}

// NewServer creates a new Cypher language server with default handlers.
func NewServer(deps Deps) *Server {
	engine := deps.Engine
	if engine == nil {
		engine = cypherast.NewEngine(cypherast.WithRecovery())
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tp := deps.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	srv := &Server{
		store:   NewDocumentStore(),
		engine:  engine,
		logger:  logger,
		tracer:  tp.Tracer(observability.TracerLSP),
		version: version,
	}

	srv.handler = protocol.Handler{
		Initialize:             srv.initialize,
		Initialized:            srv.initialized,
		Shutdown:               srv.shutdown,
		SetTrace:               srv.setTrace,
		TextDocumentDidOpen:    srv.didOpen,
		TextDocumentDidChange:  srv.didChange,
		TextDocumentDidSave:    srv.didSave,
		TextDocumentDidClose:   srv.didClose,
		TextDocumentCompletion: srv.completion,
		TextDocumentHover:      srv.hover,
	}

	return srv
}

// Run serves the language server on stdio until the client exits.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &srv.version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	srv.store.Set(uri, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	text, _ := srv.store.Get(uri)

	changed := false

	for _, change := range params.ContentChanges {
		next, ok := applyChange(text, change)
		if !ok {
			continue
		}

		text = next
		changed = true
	}

	if changed {
		srv.store.Set(uri, text)
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

// applyChange applies one content change event. Ranged events replace the
// range; whole events replace the document.
func applyChange(text string, change any) (string, bool) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, true
	case protocol.TextDocumentContentChangeEvent:
		if typed.Range == nil {
			return typed.Text, true
		}

		start := offsetAt(text, typed.Range.Start)
		end := max(offsetAt(text, typed.Range.End), start)

		return text[:start] + typed.Text + text[end:], true
	case map[string]any:
		whole, ok := typed["text"].(string)

		return whole, ok
	default:
		return text, false
	}
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if params.Text != nil {
		srv.store.Set(uri, *params.Text)
	}

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	notify(ctx, methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	notify(ctx, methodPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: srv.diagnostics(context.Background(), text),
	})
}

// diagnostics reports every syntax error in text. Recovering engines report
// each skipped statement; others stop at the first error.
func (srv *Server) diagnostics(ctx context.Context, text string) []protocol.Diagnostic {
	ctx, span := srv.tracer.Start(ctx, "cypherast.lsp.diagnostics",
		trace.WithAttributes(attribute.Int("cypher.input.bytes", len(text))))
	defer span.End()

	out := []protocol.Diagnostic{}

	result, err := srv.engine.ParseResult(ctx, text)
	if err != nil {
		var parseErr *cypherast.ParseError
		if errors.As(err, &parseErr) {
			return append(out, newDiagnostic(text, parseErr.Offset, parseErr.Message))
		}

		return append(out, newDiagnostic(text, 0, err.Error()))
	}

	for _, syntax := range result.Errors() {
		out = append(out, newDiagnostic(text, syntax.Offset, syntax.Message))
	}

	if releaseErr := result.Release(); releaseErr != nil {
		srv.logger.Warn("release parse result", "error", releaseErr)
	}

	span.SetAttributes(attribute.Int("cypher.diagnostics", len(out)))

	return out
}

func newDiagnostic(text string, offset int, message string) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := diagnosticFrom

	start := positionAt(text, offset)
	end := positionAt(text, nextRuneOffset(text, offset))

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// notify sends a notification when the context carries a sender.
func notify(ctx *glsp.Context, method string, params any) {
	if ctx == nil || ctx.Notify == nil {
		return
	}

	ctx.Notify(method, params)
}
