package lsp

import (
	"strings"
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

const testURI = "file:///query.cypher"

func TestDocumentStore_SetGetDelete(t *testing.T) {
	store := NewDocumentStore()

	store.Set(testURI, "MATCH (n) RETURN n")

	got, ok := store.Get(testURI)
	if !ok || got != "MATCH (n) RETURN n" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}

	store.Set(testURI, "RETURN 1")

	got, _ = store.Get(testURI)
	if got != "RETURN 1" {
		t.Errorf("Expected updated content, got %q", got)
	}

	store.Delete(testURI)

	if _, ok := store.Get(testURI); ok {
		t.Error("Expected document to be deleted")
	}
}

func TestNewServer_Defaults(t *testing.T) {
	srv := NewServer(Deps{})

	if srv.store == nil || srv.engine == nil || srv.logger == nil || srv.tracer == nil {
		t.Fatal("Expected defaults to be filled in")
	}

	if !srv.engine.Recovers() {
		t.Error("Expected default engine to recover from malformed statements")
	}
}

// notifications records published diagnostics.
type notifications struct {
	published []*protocol.PublishDiagnosticsParams
}

func (n *notifications) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method != methodPublishDiagnostics {
				return
			}

			if p, ok := params.(*protocol.PublishDiagnosticsParams); ok {
				n.published = append(n.published, p)
			}
		},
	}
}

func (n *notifications) last(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()

	if len(n.published) == 0 {
		t.Fatal("Expected diagnostics to be published")
	}

	return n.published[len(n.published)-1]
}

func openDocument(t *testing.T, srv *Server, sink *notifications, text string) {
	t.Helper()

	err := srv.didOpen(sink.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "cypher", Text: text},
	})
	if err != nil {
		t.Fatalf("didOpen: %v", err)
	}
}

func TestDidOpen_ValidQueryHasNoDiagnostics(t *testing.T) {
	srv := NewServer(Deps{})
	sink := &notifications{}

	openDocument(t, srv, sink, "MATCH (n) RETURN n;")

	got := sink.last(t)
	if got.URI != testURI {
		t.Errorf("URI = %q", got.URI)
	}

	if len(got.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %+v", got.Diagnostics)
	}
}

func TestDidOpen_SyntaxErrorDiagnostic(t *testing.T) {
	srv := NewServer(Deps{Engine: cypherast.NewEngine()})
	sink := &notifications{}

	openDocument(t, srv, sink, "RETURN 1;\nMATCH (n RETURN n;")

	diags := sink.last(t).Diagnostics
	if len(diags) != 1 {
		t.Fatalf("Expected one diagnostic, got %d", len(diags))
	}

	if diags[0].Range.Start.Line != 1 {
		t.Errorf("Expected diagnostic on second line, got line %d", diags[0].Range.Start.Line)
	}

	if diags[0].Severity == nil || *diags[0].Severity != protocol.DiagnosticSeverityError {
		t.Error("Expected error severity")
	}
}

func TestDidOpen_RecoveringEngineReportsEachStatement(t *testing.T) {
	srv := NewServer(Deps{})
	sink := &notifications{}

	openDocument(t, srv, sink, "MATCH (n RETURN n;\nRETURN 1;\nMATCH (;")

	if got := len(sink.last(t).Diagnostics); got != 2 {
		t.Errorf("Expected two diagnostics, got %d", got)
	}
}

func TestDidChange_WholeAndRanged(t *testing.T) {
	srv := NewServer(Deps{})
	sink := &notifications{}

	openDocument(t, srv, sink, "RETURN 1")

	err := srv.didChange(sink.context(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "RETURN 2"},
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 7},
					End:   protocol.Position{Line: 0, Character: 8},
				},
				Text: "42",
			},
		},
	})
	if err != nil {
		t.Fatalf("didChange: %v", err)
	}

	got, _ := srv.store.Get(testURI)
	if got != "RETURN 42" {
		t.Errorf("Expected edited document, got %q", got)
	}

	if len(sink.published) != 2 {
		t.Errorf("Expected diagnostics after open and change, got %d", len(sink.published))
	}
}

func TestDidClose_ClearsDiagnostics(t *testing.T) {
	srv := NewServer(Deps{})
	sink := &notifications{}

	openDocument(t, srv, sink, "MATCH (n RETURN n")

	err := srv.didClose(sink.context(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	if err != nil {
		t.Fatalf("didClose: %v", err)
	}

	if _, ok := srv.store.Get(testURI); ok {
		t.Error("Expected document to be removed")
	}

	if got := sink.last(t).Diagnostics; len(got) != 0 {
		t.Errorf("Expected cleared diagnostics, got %+v", got)
	}
}

func TestHover_InnermostNode(t *testing.T) {
	srv := NewServer(Deps{})
	sink := &notifications{}

	openDocument(t, srv, sink, "MATCH (n)\nWHERE n.age > 30\nRETURN n")

	hover, err := srv.hover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     protocol.Position{Line: 1, Character: 15},
		},
	})
	if err != nil {
		t.Fatalf("hover: %v", err)
	}

	if hover == nil {
		t.Fatal("Expected hover for integer literal")
	}

	content, ok := hover.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("Expected markup content, got %T", hover.Contents)
	}

	if !strings.Contains(content.Value, "CYPHER_AST_INTEGER") {
		t.Errorf("Expected integer node in hover, got %q", content.Value)
	}

	if hover.Range == nil || hover.Range.Start.Line != 1 {
		t.Errorf("Expected hover range on line 1, got %+v", hover.Range)
	}
}

func TestHover_UnknownDocument(t *testing.T) {
	srv := NewServer(Deps{})

	hover, err := srv.hover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.cypher"},
		},
	})
	if err != nil || hover != nil {
		t.Errorf("Expected nil hover, got %+v, %v", hover, err)
	}
}

func TestCompletion_FiltersByPrefix(t *testing.T) {
	srv := NewServer(Deps{})
	sink := &notifications{}

	openDocument(t, srv, sink, "MATCH (n) RET")

	result, err := srv.completion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			Position:     protocol.Position{Line: 0, Character: 13},
		},
	})
	if err != nil {
		t.Fatalf("completion: %v", err)
	}

	list, ok := result.(protocol.CompletionList)
	if !ok {
		t.Fatalf("Expected CompletionList, got %T", result)
	}

	if len(list.Items) != 1 || list.Items[0].Label != "RETURN" {
		t.Errorf("Expected only RETURN, got %+v", list.Items)
	}
}

func TestKeywordItems_IncludesClausesOnce(t *testing.T) {
	srv := NewServer(Deps{})

	labels := map[string]int{}
	for _, item := range srv.keywordItems("") {
		labels[item.Label]++
	}

	for _, want := range []string{"MATCH", "MERGE", "UNWIND", "WHERE", "OPTIONAL MATCH"} {
		if labels[want] != 1 {
			t.Errorf("Expected %q once, got %d", want, labels[want])
		}
	}

	if labels["query clause"] != 0 {
		t.Error("Abstract clause kind must not be offered")
	}
}

func TestOffsetPositionRoundTrip(t *testing.T) {
	text := "RETURN 'é'\nMATCH (n)"

	tests := []struct {
		name   string
		offset int
		pos    protocol.Position
	}{
		{name: "start", offset: 0, pos: protocol.Position{Line: 0, Character: 0}},
		{name: "after two-byte rune", offset: 10, pos: protocol.Position{Line: 0, Character: 9}},
		{name: "second line", offset: 18, pos: protocol.Position{Line: 1, Character: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := positionAt(text, tt.offset); got != tt.pos {
				t.Errorf("positionAt(%d) = %+v, want %+v", tt.offset, got, tt.pos)
			}

			if got := offsetAt(text, tt.pos); got != tt.offset {
				t.Errorf("offsetAt(%+v) = %d, want %d", tt.pos, got, tt.offset)
			}
		})
	}
}

func TestOffsetAt_ClampsPastLineEnd(t *testing.T) {
	text := "RETURN 1\nRETURN 2"

	if got := offsetAt(text, protocol.Position{Line: 0, Character: 99}); got != 8 {
		t.Errorf("Expected clamp to line end, got %d", got)
	}

	if got := offsetAt(text, protocol.Position{Line: 5}); got != len(text) {
		t.Errorf("Expected clamp to text end, got %d", got)
	}
}
