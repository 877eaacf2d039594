package mcp

import (
	"context"
	"fmt"
	"slices"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
)

const (
	parseToolDescription = "Parse Cypher query text into a syntax forest. " +
		"Each node carries its kind, the kinds it satisfies, scalar properties, byte span and role."
	findToolDescription = "Parse Cypher query text and return the nodes matching kind, role, " +
		"instanceof and span criteria, in pre-order."
	kindsToolDescription = "List the Cypher node kinds with their parent kind and reflected properties."
)

func (s *Server) handleParse(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ParseInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateQuery(input.Query)
	if err != nil {
		return errorResult(err)
	}

	switch input.Format {
	case "", FormatJSON:
		return s.parseJSON(ctx, input.Query)
	case FormatDump:
		forest, parseErr := astnode.ParseWith(ctx, s.engine, input.Query)
		if parseErr != nil {
			return errorResult(parseErr)
		}

		return textResult(astnode.DumpString(forest))
	default:
		return errorResult(fmt.Errorf("%w: %q", ErrUnknownFormat, input.Format))
	}
}

func (s *Server) parseJSON(ctx context.Context, query string) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.cache == nil {
		forest, err := astnode.ParseWith(ctx, s.engine, query)
		if err != nil {
			return errorResult(err)
		}

		return jsonResult(forest)
	}

	raw, hit, err := s.cache.GetOrCompute(ctx, query, func(ctx context.Context) (any, error) {
		return astnode.ParseWith(ctx, s.engine, query)
	})
	if err != nil {
		return errorResult(err)
	}

	s.logger.DebugContext(ctx, "cypher_parse", "cache_hit", hit, "bytes", len(raw))

	return jsonResult(raw)
}

func (s *Server) handleFind(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input FindInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateQuery(input.Query)
	if err != nil {
		return errorResult(err)
	}

	for _, kind := range []string{input.Type, input.InstanceOf} {
		if kind == "" {
			continue
		}

		if _, ok := s.engine.Types().Lookup(kind); !ok {
			return errorResult(unknownKind(s.engine, kind))
		}
	}

	forest, err := astnode.ParseWith(ctx, s.engine, input.Query)
	if err != nil {
		return errorResult(err)
	}

	nodes := astnode.FindAll(forest, astnode.Query{
		Type:       input.Type,
		Role:       input.Role,
		InstanceOf: input.InstanceOf,
		Start:      input.Start,
		End:        input.End,
	})

	return jsonResult(astnode.Matches(nodes, input.Query))
}

func (s *Server) handleKinds(
	_ context.Context, _ *mcpsdk.CallToolRequest, input KindsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	infos := s.engine.KindInfos()

	if input.InstanceOf == "" {
		return jsonResult(infos)
	}

	parent, ok := s.engine.Types().Lookup(input.InstanceOf)
	if !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownKind, input.InstanceOf))
	}

	filtered := make([]cypherast.KindInfo, 0, len(infos))

	for _, info := range infos {
		if slices.Contains(info.InstanceOf, parent.Name()) {
			filtered = append(filtered, info)
		}
	}

	return jsonResult(filtered)
}

// unknownKind reports kind as unknown, with the closest registered name as
// a hint when there is one.
func unknownKind(engine *cypherast.Engine, kind string) error {
	if hint, ok := engine.SuggestKind(kind); ok {
		return fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownKind, kind, hint)
	}

	return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}
