package lsp

import (
	"slices"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

// Keywords that are not clause labels.
var subclauseKeywords = []string{
	"WHERE", "AS", "DISTINCT", "ORDER BY", "SKIP", "LIMIT", "ASC", "DESC",
	"OPTIONAL MATCH", "DETACH DELETE", "ON MATCH", "ON CREATE", "YIELD",
	"AND", "OR", "XOR", "NOT", "IN", "IS NULL", "IS NOT NULL",
	"STARTS WITH", "ENDS WITH", "CONTAINS", "CASE", "WHEN", "THEN", "ELSE", "END",
}

func completionItem(label string, kind protocol.CompletionItemKind, detail string) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:  label,
		Kind:   &kind,
		Detail: &detail,
	}
}

func (srv *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	prefix := ""

	if text, ok := srv.store.Get(params.TextDocument.URI); ok {
		prefix = wordBefore(text, offsetAt(text, params.Position))
	}

	return protocol.CompletionList{IsIncomplete: false, Items: srv.keywordItems(prefix)}, nil
}

// keywordItems returns clause and sub-clause keywords starting with prefix,
// case-insensitively.
func (srv *Server) keywordItems(prefix string) []protocol.CompletionItem {
	prefix = strings.ToUpper(prefix)

	items := make([]protocol.CompletionItem, 0, len(subclauseKeywords))
	seen := make(map[string]bool)

	add := func(label, detail string) {
		if seen[label] || !strings.HasPrefix(label, prefix) {
			return
		}

		seen[label] = true

		items = append(items, completionItem(label, protocol.CompletionItemKindKeyword, detail))
	}

	for _, info := range srv.engine.KindInfos() {
		if !slices.Contains(info.InstanceOf, cypher.KindQueryClause.Name()) || info.Name == cypher.KindQueryClause.Name() {
			continue
		}

		add(info.Label, "clause ("+info.Name+")")
	}

	for _, keyword := range subclauseKeywords {
		add(keyword, "keyword")
	}

	return items
}

// wordBefore returns the identifier characters immediately before offset.
func wordBefore(text string, offset int) string {
	start := offset

	for start > 0 && isWordChar(text[start-1]) {
		start--
	}

	return text[start:offset]
}

func isWordChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}
