package astnode

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

// Query selects nodes. Empty strings and nil offsets match everything.
type Query struct {
	Type       string `json:"type,omitempty"`
	Role       string `json:"role,omitempty"`
	InstanceOf string `json:"instanceof,omitempty"`
	// Start keeps nodes starting at or after the offset.
	Start *int `json:"start,omitempty"`
	// End keeps nodes ending at or before the offset.
	End *int `json:"end,omitempty"`
}

// Offset returns a pointer to v, for Query bounds.
func Offset(v int) *int {
	return &v
}

// Match reports whether node satisfies every criterion of q.
func (q Query) Match(node *Node) bool {
	switch {
	case q.Type != "" && node.Type != q.Type:
		return false
	case q.Role != "" && node.Role != q.Role:
		return false
	case q.InstanceOf != "" && !node.Is(q.InstanceOf):
		return false
	case q.Start != nil && node.Start < *q.Start:
		return false
	case q.End != nil && node.End > *q.End:
		return false
	default:
		return true
	}
}

// FindNodes returns the nodes of the subtree rooted at n, n included, that
// match q, in pre-order.
func (n *Node) FindNodes(q Query) []*Node {
	var out []*Node

	if q.Match(n) {
		out = append(out, n)
	}

	n.walkDescendants(func(d *Node) bool {
		if q.Match(d) {
			out = append(out, d)
		}

		return true
	})

	return out
}

// FindAll runs FindNodes over every root of a forest.
func FindAll(forest []*Node, q Query) []*Node {
	var out []*Node

	for _, root := range forest {
		out = append(out, root.FindNodes(q)...)
	}

	return out
}

// Get returns a scalar property.
func (n *Node) Get(name string) (cypherast.Value, bool) {
	return n.Props.Get(name)
}

// GetString returns a string property.
func (n *Node) GetString(name string) (string, bool) {
	v, ok := n.Props.Get(name)
	if !ok {
		return "", false
	}

	switch typed := v.(type) {
	case cypherast.String:
		return string(typed), true
	case cypherast.Direction:
		return string(typed), true
	case cypherast.Operator:
		return string(typed), true
	default:
		return "", false
	}
}

// GetBool returns a boolean property, false when absent.
func (n *Node) GetBool(name string) bool {
	v, ok := n.Props.Get(name)
	if !ok {
		return false
	}

	b, ok := v.(cypherast.Bool)

	return ok && bool(b)
}

// GetOperators returns an operator-list property.
func (n *Node) GetOperators(name string) []string {
	v, ok := n.Props.Get(name)
	if !ok {
		return nil
	}

	ops, _ := v.(cypherast.OperatorList)

	return ops
}

// Child returns the single node carrying role. It returns nil when there is
// none and ErrAmbiguousRole when there are several.
func (n *Node) Child(role string) (*Node, error) {
	matches := n.ChildrenWithRole(role)

	switch len(matches) {
	case 0:
		return nil, nil //nolint:nilnil // Absence is not an error.
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q on %s", ErrAmbiguousRole, role, n.Type)
	}
}

// ChildrenWithRole returns the children carrying role, in order. Roles that
// referenced deeper nodes are searched among all descendants.
func (n *Node) ChildrenWithRole(role string) []*Node {
	candidates := n.Children
	if slices.Contains(n.indirect, role) {
		candidates = n.Descendants()
	}

	var out []*Node

	for _, candidate := range candidates {
		if candidate.Role == role {
			out = append(out, candidate)
		}
	}

	return out
}

// Match is a flat view of a found node for listings and wire responses.
type Match struct {
	ID         int               `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role,omitempty"`
	InstanceOf []string          `json:"instanceof"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Text       string            `json:"text"`
	Props      map[string]string `json:"props,omitempty"`
}

// NewMatch flattens node. Text is the node's span of source, or "" when the
// span lies outside source.
func NewMatch(node *Node, source string) Match {
	match := Match{
		ID:         node.ID,
		Type:       node.Type,
		Role:       node.Role,
		InstanceOf: node.InstanceOf,
		Start:      node.Start,
		End:        node.End,
	}

	if node.Start >= 0 && node.Start <= node.End && node.End <= len(source) {
		match.Text = source[node.Start:node.End]
	}

	if node.Props != nil && node.Props.Len() > 0 {
		match.Props = make(map[string]string, node.Props.Len())

		node.Props.Range(func(name string, v cypherast.Value) bool {
			match.Props[name] = cypherast.Format(v)

			return true
		})
	}

	return match
}

// Matches flattens nodes.
func Matches(nodes []*Node, source string) []Match {
	out := make([]Match, 0, len(nodes))

	for _, node := range nodes {
		out = append(out, NewMatch(node, source))
	}

	return out
}
