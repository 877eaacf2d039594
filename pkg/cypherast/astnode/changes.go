package astnode

import (
	"encoding/json"
)

// ChangeType classifies a structural change between two trees.
type ChangeType int

// Change types.
const (
	ChangeAdded ChangeType = iota
	ChangeRemoved
	ChangeModified
)

func (ct ChangeType) String() string {
	switch ct {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Change is one structural difference. Before is nil for additions and After
// is nil for removals.
type Change struct {
	Before *Node
	After  *Node
	Type   ChangeType
}

// DetectChanges compares two forests. Offsets are ignored, so reformatting a
// query yields no changes. Children are matched by type and scalar
// properties; unmatched nodes are reported as removed or added.
func DetectChanges(before, after []*Node) []Change {
	return diffNodes(before, after)
}

// DetectNodeChanges compares two trees.
func DetectNodeChanges(before, after *Node) []Change {
	switch {
	case before == nil && after == nil:
		return nil
	case before == nil:
		return []Change{{After: after, Type: ChangeAdded}}
	case after == nil:
		return []Change{{Before: before, Type: ChangeRemoved}}
	}

	modified := before.Type != after.Type ||
		before.Role != after.Role ||
		propsKey(before) != propsKey(after)

	childChanges := diffNodes(before.Children, after.Children)

	var changes []Change

	if modified || len(childChanges) > 0 {
		changes = append(changes, Change{Before: before, After: after, Type: ChangeModified})
	}

	return append(changes, childChanges...)
}

// childKey identifies a node by its type, role and scalar properties.
type childKey struct {
	Type  string
	Role  string
	Props string
}

func keyOf(n *Node) childKey {
	return childKey{Type: n.Type, Role: n.Role, Props: propsKey(n)}
}

func propsKey(n *Node) string {
	raw, err := json.Marshal(n.Props)
	if err != nil {
		return ""
	}

	return string(raw)
}

func diffNodes(beforeNodes, afterNodes []*Node) []Change {
	if len(beforeNodes) == 0 && len(afterNodes) == 0 {
		return nil
	}

	afterIndex := make(map[childKey][]int)
	for idx, node := range afterNodes {
		key := keyOf(node)
		afterIndex[key] = append(afterIndex[key], idx)
	}

	afterUsed := make([]bool, len(afterNodes))
	beforeMatched := make([]bool, len(beforeNodes))

	var changes []Change

	for idx, bn := range beforeNodes {
		for _, afterIdx := range afterIndex[keyOf(bn)] {
			if afterUsed[afterIdx] {
				continue
			}

			afterUsed[afterIdx] = true
			beforeMatched[idx] = true

			changes = append(changes, DetectNodeChanges(bn, afterNodes[afterIdx])...)

			break
		}
	}

	for idx, bn := range beforeNodes {
		if !beforeMatched[idx] {
			changes = append(changes, Change{Before: bn, Type: ChangeRemoved})
		}
	}

	for idx, an := range afterNodes {
		if !afterUsed[idx] {
			changes = append(changes, Change{After: an, Type: ChangeAdded})
		}
	}

	return changes
}
