package astnode

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

// ToMap converts the node to a map: type, instanceof, children, props, start,
// end and role (nil when unset).
func (n *Node) ToMap() map[string]any {
	if n == nil {
		return nil
	}

	children := make([]map[string]any, len(n.Children))
	for idx, child := range n.Children {
		children[idx] = child.ToMap()
	}

	var role any
	if n.Role != "" {
		role = n.Role
	}

	instanceOf := n.InstanceOf
	if instanceOf == nil {
		instanceOf = []string{}
	}

	return map[string]any{
		"type":       n.Type,
		"instanceof": instanceOf,
		"children":   children,
		"props":      n.Props,
		"start":      n.Start,
		"end":        n.End,
		"role":       role,
	}
}

// ToJSON renders ToMap as JSON.
func (n *Node) ToJSON() ([]byte, error) {
	out, err := json.Marshal(n.ToMap())
	if err != nil {
		return nil, fmt.Errorf("marshal node %d: %w", n.ID, err)
	}

	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return n.ToJSON()
}

// String returns "<CypherAstNode.TYPE>".
func (n *Node) String() string {
	if n == nil {
		return "<CypherAstNode.nil>"
	}

	return "<CypherAstNode." + n.Type + ">"
}

type dumpLine struct {
	id, start, end int
	label, detail  string
}

// Dump writes a listing of the forest, one node per line:
//
//	@0  0..9  statement           body=@1
//	@1  0..9  > query             clauses=[@2]
func Dump(w io.Writer, forest []*Node) error {
	var lines []dumpLine

	for _, root := range forest {
		lines = collectDump(lines, root, 0)
	}

	idWidth, startWidth, endWidth, labelWidth := 0, 0, 0, 0

	for _, line := range lines {
		idWidth = max(idWidth, len(strconv.Itoa(line.id))+1)
		startWidth = max(startWidth, len(strconv.Itoa(line.start)))
		endWidth = max(endWidth, len(strconv.Itoa(line.end)))
		labelWidth = max(labelWidth, len(line.label))
	}

	for _, line := range lines {
		text := fmt.Sprintf("%*s  %*d..%-*d  %-*s  %s",
			idWidth, "@"+strconv.Itoa(line.id),
			startWidth, line.start, endWidth, line.end,
			labelWidth, line.label, line.detail)

		if _, err := io.WriteString(w, strings.TrimRight(text, " ")+"\n"); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
	}

	return nil
}

// Dump writes the listing of the subtree rooted at n.
func (n *Node) Dump(w io.Writer) error {
	return Dump(w, []*Node{n})
}

// DumpString returns the listing of the forest.
func DumpString(forest []*Node) string {
	var sb strings.Builder

	_ = Dump(&sb, forest) //nolint:errcheck // strings.Builder never fails.

	return sb.String()
}

func collectDump(lines []dumpLine, n *Node, depth int) []dumpLine {
	lines = append(lines, dumpLine{
		id:     n.ID,
		start:  n.Start,
		end:    n.End,
		label:  strings.Repeat("> ", depth) + KindLabel(n.Type),
		detail: dumpDetail(n),
	})

	for _, child := range n.Children {
		lines = collectDump(lines, child, depth+1)
	}

	return lines
}

func dumpDetail(n *Node) string {
	props := n.extracted
	if props == nil {
		props = n.Props
	}

	parts := make([]string, 0, props.Len())

	props.Range(func(name string, v cypherast.Value) bool {
		switch typed := v.(type) {
		case cypherast.RefList:
			if len(typed) == 0 {
				return true
			}
		case cypherast.OperatorList:
			if len(typed) == 0 {
				return true
			}
		}

		parts = append(parts, name+"="+cypherast.Format(v))

		return true
	})

	return strings.Join(parts, ", ")
}

// Outline writes the forest without identities or offsets, one node per
// line indented by depth, so that reformatted queries outline identically:
//
//	statement
//	  query
//	    clause: RETURN distinct=false
func Outline(w io.Writer, forest []*Node) error {
	for _, root := range forest {
		if err := writeOutline(w, root, 0); err != nil {
			return err
		}
	}

	return nil
}

// OutlineString returns the outline of the forest.
func OutlineString(forest []*Node) string {
	var sb strings.Builder

	_ = Outline(&sb, forest) //nolint:errcheck // strings.Builder never fails.

	return sb.String()
}

func writeOutline(w io.Writer, n *Node, depth int) error {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("  ", depth))

	if n.Role != "" {
		sb.WriteString(n.Role)
		sb.WriteString(": ")
	}

	sb.WriteString(KindLabel(n.Type))

	n.Props.Range(func(name string, v cypherast.Value) bool {
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(cypherast.Format(v))

		return true
	})

	sb.WriteString("\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write outline: %w", err)
	}

	for _, child := range n.Children {
		if err := writeOutline(w, child, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// KindLabel returns the human readable label of a kind name, e.g. "MATCH"
// for CYPHER_AST_MATCH. Unknown names are returned unchanged.
func KindLabel(kindName string) string {
	kind, ok := cypherast.Default().Types().Lookup(kindName)
	if !ok {
		return kindName
	}

	return kind.String()
}
