package cypherast

import (
	"fmt"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

// Identities maps every node of one walk to its identity.
type Identities map[cypher.Node]int

// AssignIdentities numbers the nodes of the forest in pre-order, starting at
// zero and continuing across roots.
func AssignIdentities(roots []cypher.Node) Identities {
	ids := make(Identities)
	next := 0

	var walk func(node cypher.Node)

	walk = func(node cypher.Node) {
		if node == nil {
			return
		}

		if _, seen := ids[node]; seen {
			return
		}

		ids[node] = next
		next++

		for _, child := range node.Children() {
			walk(child)
		}
	}

	for _, root := range roots {
		walk(root)
	}

	return ids
}

// Ref returns the reference to node under role. Nodes outside the walk get
// identity -1.
func (ids Identities) Ref(node cypher.Node, role string) Ref {
	id, ok := ids[node]
	if !ok {
		id = -1
	}

	return Ref{ID: id, Role: role}
}

// Extractor pulls typed properties out of syntax tree nodes.
type Extractor struct {
	types  *TypeRegistry
	ops    *OperatorRegistry
	tables *Tables
}

// NewExtractor returns an extractor over the given registries and tables.
func NewExtractor(types *TypeRegistry, ops *OperatorRegistry, tables *Tables) *Extractor {
	return &Extractor{types: types, ops: ops, tables: tables}
}

// Extract returns the properties of node. Families are applied in order, so
// a later family overwrites an earlier one on a name clash. Absent child
// references are omitted; empty reference lists are kept.
func (e *Extractor) Extract(node cypher.Node, ids Identities) *Properties {
	props := NewProperties()

	for _, family := range Families() {
		for _, entry := range e.tables.Family(family) {
			if !e.types.Satisfies(node, entry.Kind) {
				continue
			}

			if v, ok := e.value(entry, node, ids); ok {
				props.Set(entry.Name, v)
			}
		}
	}

	return props
}

func (e *Extractor) value(entry Entry, node cypher.Node, ids Identities) (Value, bool) {
	switch entry.Family {
	case FamilyDirection:
		return Direction(DirectionName(entry.direction(node))), true
	case FamilyOperator:
		return Operator(e.ops.OperatorName(entry.operator(node))), true
	case FamilyOperatorList:
		ops := entry.operators(node)
		names := make(OperatorList, 0, len(ops))

		for _, op := range ops {
			names = append(names, e.ops.OperatorName(op))
		}

		return names, true
	case FamilyBool:
		return Bool(entry.boolean(node)), true
	case FamilyString:
		return String(entry.str(node)), true
	case FamilyASTList:
		children := entry.list(node)
		refs := make(RefList, 0, len(children))

		for idx, child := range children {
			if child == nil {
				panic(fmt.Sprintf("cypherast: %s.%s has a nil element at %d", node.Kind().Name(), entry.Name, idx))
			}

			refs = append(refs, ids.Ref(child, entry.Role))
		}

		return refs, true
	case FamilyAST:
		child := entry.child(node)
		if child == nil {
			return nil, false
		}

		return ids.Ref(child, entry.Role), true
	default:
		return nil, false
	}
}
