package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast/astnode"
)

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // LSP expects a null hover for unknown documents.
	}

	ctx, span := srv.tracer.Start(context.Background(), "cypherast.lsp.hover")
	defer span.End()

	forest, err := astnode.ParseWith(ctx, srv.engine, text)
	if err != nil {
		srv.logger.Debug("hover parse failed", "uri", params.TextDocument.URI, "error", err)

		return nil, nil //nolint:nilnil // Diagnostics already report the error.
	}

	node := nodeAt(forest, offsetAt(text, params.Position))
	if node == nil {
		return nil, nil //nolint:nilnil // Nothing under the cursor.
	}

	hoverRange := protocol.Range{
		Start: positionAt(text, node.Start),
		End:   positionAt(text, node.End),
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: describeNode(node),
		},
		Range: &hoverRange,
	}, nil
}

// nodeAt returns the innermost node whose span contains offset.
func nodeAt(forest []*astnode.Node, offset int) *astnode.Node {
	var best *astnode.Node

	for _, root := range forest {
		if !contains(root, offset) {
			continue
		}

		best = root

		for descended := true; descended; {
			descended = false

			for _, child := range best.Children {
				if contains(child, offset) {
					best = child
					descended = true

					break
				}
			}
		}
	}

	return best
}

func contains(node *astnode.Node, offset int) bool {
	return node.Start <= offset && offset < node.End
}

func describeNode(node *astnode.Node) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "**%s** `%s`\n\n", astnode.KindLabel(node.Type), node.Type)

	if node.Role != "" {
		fmt.Fprintf(&sb, "- role: `%s`\n", node.Role)
	}

	fmt.Fprintf(&sb, "- instanceof: %s\n", strings.Join(node.InstanceOf, ", "))
	fmt.Fprintf(&sb, "- span: %d..%d\n", node.Start, node.End)

	if node.Props != nil {
		node.Props.Range(func(name string, v cypherast.Value) bool {
			fmt.Fprintf(&sb, "- %s: `%s`\n", name, cypherast.Format(v))

			return true
		})
	}

	return sb.String()
}
