package cypherast

import (
	"encoding/json"
	"fmt"
)

// Value is an extracted property value. The set of variants is closed:
// String, Bool, Direction, Operator, OperatorList, Ref and RefList.
type Value interface {
	value()
}

// String is a string property.
type String string

// Bool is a boolean property.
type Bool bool

// Direction is a rendered relationship direction, e.g. "CYPHER_REL_OUTBOUND".
type Direction string

// Operator is a rendered operator name, e.g. "CYPHER_OP_AND".
type Operator string

// OperatorList is an ordered list of rendered operator names.
type OperatorList []string

// Ref points at another node of the same walk by identity. Role is the name
// under which the parent refers to it.
type Ref struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}

// RefList is an ordered list of references sharing one role.
type RefList []Ref

func (String) value()       {}
func (Bool) value()         {}
func (Direction) value()    {}
func (Operator) value()     {}
func (OperatorList) value() {}
func (Ref) value()          {}
func (RefList) value()      {}

// MarshalJSON renders an empty list as [] rather than null.
func (l OperatorList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]string(l))
}

// MarshalJSON renders an empty list as [] rather than null.
func (l RefList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]Ref(l))
}

// Format renders a value the way tree dumps show it.
func Format(v Value) string {
	switch typed := v.(type) {
	case String:
		return fmt.Sprintf("%q", string(typed))
	case Bool:
		return fmt.Sprintf("%t", bool(typed))
	case Direction:
		return string(typed)
	case Operator:
		return string(typed)
	case OperatorList:
		return fmt.Sprintf("%v", []string(typed))
	case Ref:
		return fmt.Sprintf("@%d", typed.ID)
	case RefList:
		out := "["

		for idx, ref := range typed {
			if idx > 0 {
				out += ", "
			}

			out += fmt.Sprintf("@%d", ref.ID)
		}

		return out + "]"
	default:
		return "?"
	}
}
