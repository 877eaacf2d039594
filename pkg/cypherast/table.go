package cypherast

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

// Family is a property extraction strategy.
type Family int

// Families in extraction order.
const (
	FamilyDirection Family = iota
	FamilyOperator
	FamilyOperatorList
	FamilyBool
	FamilyString
	FamilyASTList
	FamilyAST

	familyCount
)

// Families returns every family in extraction order.
func Families() []Family {
	out := make([]Family, 0, familyCount)

	for family := range familyCount {
		out = append(out, family)
	}

	return out
}

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyDirection:
		return "direction"
	case FamilyOperator:
		return "operator"
	case FamilyOperatorList:
		return "operator-list"
	case FamilyBool:
		return "bool"
	case FamilyString:
		return "string"
	case FamilyASTList:
		return "ast-list"
	case FamilyAST:
		return "ast"
	default:
		return "unknown"
	}
}

// ErrTableConflict is reported by Tables.Validate when one node kind would
// receive the same property name from two entries.
var ErrTableConflict = errors.New("property table conflict")

// Entry binds a property name to an accessor for nodes satisfying Kind.
// Entries are built with the typed helpers below, which encode the
// accessor's node type. Applying an entry to a node of another type panics.
type Entry struct {
	Kind   cypher.Kind
	Name   string
	Role   string
	Family Family

	direction func(cypher.Node) cypher.Direction
	operator  func(cypher.Node) cypher.Operator
	operators func(cypher.Node) []cypher.Operator
	boolean   func(cypher.Node) bool
	str       func(cypher.Node) string
	list      func(cypher.Node) []cypher.Node
	child     func(cypher.Node) cypher.Node
}

// DirectionEntry builds a direction-family entry.
func DirectionEntry[N cypher.Node](kind cypher.Kind, name string, get func(N) cypher.Direction) Entry {
	return Entry{Kind: kind, Name: name, Family: FamilyDirection, direction: func(node cypher.Node) cypher.Direction {
		return get(node.(N))
	}}
}

// OperatorEntry builds an operator-family entry.
func OperatorEntry[N cypher.Node](kind cypher.Kind, name string, get func(N) cypher.Operator) Entry {
	return Entry{Kind: kind, Name: name, Family: FamilyOperator, operator: func(node cypher.Node) cypher.Operator {
		return get(node.(N))
	}}
}

// OperatorListEntry builds an operator-list-family entry.
func OperatorListEntry[N cypher.Node](kind cypher.Kind, name string, get func(N) []cypher.Operator) Entry {
	return Entry{Kind: kind, Name: name, Family: FamilyOperatorList, operators: func(node cypher.Node) []cypher.Operator {
		return get(node.(N))
	}}
}

// BoolEntry builds a bool-family entry.
func BoolEntry[N cypher.Node](kind cypher.Kind, name string, get func(N) bool) Entry {
	return Entry{Kind: kind, Name: name, Family: FamilyBool, boolean: func(node cypher.Node) bool {
		return get(node.(N))
	}}
}

// StringEntry builds a string-family entry.
func StringEntry[N cypher.Node](kind cypher.Kind, name string, get func(N) string) Entry {
	return Entry{Kind: kind, Name: name, Family: FamilyString, str: func(node cypher.Node) string {
		return get(node.(N))
	}}
}

// ASTListEntry builds an ast-list-family entry. Each reference carries the
// singular role.
func ASTListEntry[N cypher.Node](kind cypher.Kind, name, role string, get func(N) []cypher.Node) Entry {
	return Entry{Kind: kind, Name: name, Role: role, Family: FamilyASTList, list: func(node cypher.Node) []cypher.Node {
		return get(node.(N))
	}}
}

// ASTEntry builds an ast-family entry. The reference role is the property name.
func ASTEntry[N cypher.Node](kind cypher.Kind, name string, get func(N) cypher.Node) Entry {
	return Entry{Kind: kind, Name: name, Role: name, Family: FamilyAST, child: func(node cypher.Node) cypher.Node {
		return get(node.(N))
	}}
}

// Tables is the immutable set of property tables, one slice per family.
type Tables struct {
	families [familyCount][]Entry
}

// NewTablesFrom groups entries by family, keeping their relative order.
func NewTablesFrom(entries ...Entry) *Tables {
	tables := &Tables{}

	for _, entry := range entries {
		if entry.Family < 0 || entry.Family >= familyCount {
			continue
		}

		tables.families[entry.Family] = append(tables.families[entry.Family], entry)
	}

	return tables
}

// Family returns the entries of one family. The slice must not be modified.
func (t *Tables) Family(family Family) []Entry {
	if family < 0 || family >= familyCount {
		return nil
	}

	return t.families[family]
}

// Len returns the total number of entries.
func (t *Tables) Len() int {
	total := 0

	for _, entries := range t.families {
		total += len(entries)
	}

	return total
}

// Applicable returns the entries that apply to kind, in extraction order.
func (t *Tables) Applicable(kind cypher.Kind) []Entry {
	var out []Entry

	for _, entries := range t.families {
		for _, entry := range entries {
			if cypher.InstanceOf(kind, entry.Kind) {
				out = append(out, entry)
			}
		}
	}

	return out
}

// Validate checks that no registered kind receives the same property name
// twice and that every entry names a registered kind.
func (t *Tables) Validate(types *TypeRegistry) error {
	var errs []error

	for _, entries := range t.families {
		for _, entry := range entries {
			if _, ok := types.Lookup(entry.Kind.Name()); !ok {
				errs = append(errs, fmt.Errorf("%w: %s entry %q names unregistered kind %s",
					ErrTableConflict, entry.Family, entry.Name, entry.Kind.Name()))
			}
		}
	}

	for _, kind := range types.Kinds() {
		seen := make(map[string]Family)

		for _, entry := range t.Applicable(kind) {
			if previous, dup := seen[entry.Name]; dup {
				errs = append(errs, fmt.Errorf("%w: %s receives %q from %s and %s",
					ErrTableConflict, kind.Name(), entry.Name, previous, entry.Family))

				continue
			}

			seen[entry.Name] = entry.Family
		}
	}

	return errors.Join(errs...)
}
