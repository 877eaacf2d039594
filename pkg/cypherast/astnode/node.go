// Package astnode is the host tree built from reflected Cypher syntax trees.
//
// Reference properties are folded into child roles at construction time: a
// node referenced as "predicate" by its parent gets Role "predicate" and the
// reference disappears from the parent's Props. Getters look children up by
// role.
package astnode

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

// Sentinel errors.
var (
	// ErrChildNotFound is returned when a reference names a node outside the subtree.
	ErrChildNotFound = errors.New("referenced child not found")
	// ErrAmbiguousRole is returned by Child when several children share a singular role.
	ErrAmbiguousRole = errors.New("multiple children with singular role")
)

// Node is one host node.
type Node struct {
	ID         int
	Type       string
	InstanceOf []string
	Children   []*Node
	// Props holds the scalar properties. References were resolved into roles.
	Props *cypherast.Properties
	Start int
	End   int
	// Role is the name under which the parent refers to this node, or "".
	Role string

	extracted *cypherast.Properties
	indirect  []string
}

// Constructor builds Nodes. It satisfies cypherast.Constructor[*Node].
type Constructor struct{}

// Construct implements cypherast.Constructor.
func (Constructor) Construct(spec cypherast.NodeSpec[*Node]) (*Node, error) {
	return New(spec)
}

// Parse parses text with the default engine into a host forest.
func Parse(ctx context.Context, text string) ([]*Node, error) {
	return cypherast.Parse[*Node](ctx, Constructor{}, text)
}

// ParseWith parses text with engine into a host forest.
func ParseWith(ctx context.Context, engine *cypherast.Engine, text string) ([]*Node, error) {
	return cypherast.ParseWith[*Node](ctx, engine, Constructor{}, text)
}

// New builds a node from spec and resolves its reference properties.
func New(spec cypherast.NodeSpec[*Node]) (*Node, error) {
	props := spec.Props
	if props == nil {
		props = cypherast.NewProperties()
	}

	node := &Node{
		ID:         spec.ID,
		Type:       spec.Kind,
		InstanceOf: spec.InstanceOf,
		Children:   spec.Children,
		Props:      cypherast.NewProperties(),
		Start:      spec.Start,
		End:        spec.End,
		extracted:  props,
	}

	var err error

	props.Range(func(name string, v cypherast.Value) bool {
		err = node.initProp(name, v)

		return err == nil
	})

	if err != nil {
		return nil, err
	}

	return node, nil
}

func (n *Node) initProp(name string, v cypherast.Value) error {
	switch typed := v.(type) {
	case cypherast.Ref:
		return n.addChildRole(typed)
	case cypherast.RefList:
		for _, ref := range typed {
			if err := n.addChildRole(ref); err != nil {
				return err
			}
		}
	case cypherast.OperatorList:
		if len(typed) > 0 {
			n.Props.Set(name, typed)
		}
	default:
		n.Props.Set(name, v)
	}

	return nil
}

func (n *Node) addChildRole(ref cypherast.Ref) error {
	for _, child := range n.Children {
		if child.ID == ref.ID {
			child.Role = ref.Role

			return nil
		}
	}

	var found *Node

	n.walkDescendants(func(d *Node) bool {
		if d.ID == ref.ID {
			found = d

			return false
		}

		return true
	})

	if found == nil {
		return fmt.Errorf("%w: id %d (role %q)", ErrChildNotFound, ref.ID, ref.Role)
	}

	found.Role = ref.Role

	if !slices.Contains(n.indirect, ref.Role) {
		n.indirect = append(n.indirect, ref.Role)
	}

	return nil
}

// walkDescendants visits every descendant in pre-order until fn returns false.
func (n *Node) walkDescendants(fn func(*Node) bool) bool {
	for _, child := range n.Children {
		if !fn(child) || !child.walkDescendants(fn) {
			return false
		}
	}

	return true
}

// Descendants returns every node below n in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node

	n.walkDescendants(func(d *Node) bool {
		out = append(out, d)

		return true
	})

	return out
}

// Is reports whether the node satisfies kind, e.g. "CYPHER_AST_EXPRESSION".
func (n *Node) Is(kind string) bool {
	return slices.Contains(n.InstanceOf, kind)
}

// Extracted returns the properties as handed to the constructor, references
// included.
func (n *Node) Extracted() *cypherast.Properties {
	return n.extracted
}
