// Package cypherast reflects a parsed Cypher syntax tree into a generic,
// language-neutral tree. Each node is described by its kind name, the
// abstract kinds it satisfies, ordered children, named typed properties and a
// source span. Properties are pulled from the syntax tree by declarative
// tables grouped in seven families.
package cypherast

import (
	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

// UnknownKind is the name reported for a node whose kind is not registered.
const UnknownKind = cypher.UnknownKindName

// UnknownOperator is the name reported for an unregistered operator.
const UnknownOperator = cypher.UnknownOperatorName

// UnknownDirection is the name reported for an unrecognized direction.
const UnknownDirection = "CYPHER_REL_UNKNOWN"

// TypeRegistry is the ordered set of node kinds known to the extraction layer.
// It is immutable once built.
type TypeRegistry struct {
	kinds  []cypher.Kind
	byName map[string]cypher.Kind
}

// NewTypeRegistry returns a registry of every parser kind in canonical order.
func NewTypeRegistry() *TypeRegistry {
	return NewTypeRegistryOf(cypher.Kinds())
}

// NewTypeRegistryOf returns a registry restricted to kinds, in the given order.
func NewTypeRegistryOf(kinds []cypher.Kind) *TypeRegistry {
	owned := make([]cypher.Kind, len(kinds))
	copy(owned, kinds)

	byName := make(map[string]cypher.Kind, len(owned))
	for _, kind := range owned {
		byName[kind.Name()] = kind
	}

	return &TypeRegistry{kinds: owned, byName: byName}
}

// Kinds returns a copy of the registered kinds.
func (r *TypeRegistry) Kinds() []cypher.Kind {
	out := make([]cypher.Kind, len(r.kinds))
	copy(out, r.kinds)

	return out
}

// KindName returns the name of the node's concrete kind, or UnknownKind.
func (r *TypeRegistry) KindName(node cypher.Node) string {
	kind := node.Kind()
	if _, ok := r.byName[kind.Name()]; !ok {
		return UnknownKind
	}

	return kind.Name()
}

// Satisfies reports whether node is an instance of kind.
func (r *TypeRegistry) Satisfies(node cypher.Node, kind cypher.Kind) bool {
	return cypher.InstanceOf(node.Kind(), kind)
}

// AllSatisfiedNames returns the names of every registered kind the node
// satisfies, in registry order.
func (r *TypeRegistry) AllSatisfiedNames(node cypher.Node) []string {
	names := make([]string, 0, 4) //nolint:mnd // Hierarchies are at most four deep.

	for _, kind := range r.kinds {
		if r.Satisfies(node, kind) {
			names = append(names, kind.Name())
		}
	}

	return names
}

// Lookup resolves a kind name such as "CYPHER_AST_MATCH".
func (r *TypeRegistry) Lookup(name string) (cypher.Kind, bool) {
	kind, ok := r.byName[name]

	return kind, ok
}

// OperatorRegistry is the ordered set of operators known to the extraction layer.
type OperatorRegistry struct {
	ops []cypher.Operator
}

// NewOperatorRegistry returns a registry of every parser operator.
func NewOperatorRegistry() *OperatorRegistry {
	return NewOperatorRegistryOf(cypher.Operators())
}

// NewOperatorRegistryOf returns a registry restricted to ops.
func NewOperatorRegistryOf(ops []cypher.Operator) *OperatorRegistry {
	owned := make([]cypher.Operator, len(ops))
	copy(owned, ops)

	return &OperatorRegistry{ops: owned}
}

// OperatorName returns the symbolic name of op, or UnknownOperator.
func (r *OperatorRegistry) OperatorName(op cypher.Operator) string {
	for _, known := range r.ops {
		if known == op {
			return op.Name()
		}
	}

	return UnknownOperator
}

// Lookup resolves an operator name such as "CYPHER_OP_AND".
func (r *OperatorRegistry) Lookup(name string) (cypher.Operator, bool) {
	for _, op := range r.ops {
		if op.Name() == name {
			return op, true
		}
	}

	return 0, false
}

// DirectionName renders a relationship direction.
func DirectionName(dir cypher.Direction) string {
	switch dir {
	case cypher.DirInbound:
		return "CYPHER_REL_INBOUND"
	case cypher.DirOutbound:
		return "CYPHER_REL_OUTBOUND"
	case cypher.DirBidirectional:
		return "CYPHER_REL_BIDIRECTIONAL"
	default:
		return UnknownDirection
	}
}
