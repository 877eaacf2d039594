package cypher

// Operator identifies a unary, binary or comparison operator.
type Operator int

// Operators in registry order.
const (
	OpOr Operator = iota
	OpXor
	OpAnd
	OpNot
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual
	OpPlus
	OpMinus
	OpMult
	OpDiv
	OpMod
	OpPow
	OpUnaryPlus
	OpUnaryMinus
	OpSubscript
	OpMapProjection
	OpRegex
	OpIn
	OpStartsWith
	OpEndsWith
	OpContains
	OpIsNull
	OpIsNotNull
	OpProperty
	OpLabel

	operatorCount
)

type operatorInfo struct {
	name   string
	symbol string
}

//nolint:gochecknoglobals // Static operator table.
var operatorInfos = [operatorCount]operatorInfo{
	OpOr:               {"CYPHER_OP_OR", "OR"},
	OpXor:              {"CYPHER_OP_XOR", "XOR"},
	OpAnd:              {"CYPHER_OP_AND", "AND"},
	OpNot:              {"CYPHER_OP_NOT", "NOT"},
	OpEqual:            {"CYPHER_OP_EQUAL", "="},
	OpNotEqual:         {"CYPHER_OP_NEQUAL", "<>"},
	OpLessThan:         {"CYPHER_OP_LT", "<"},
	OpGreaterThan:      {"CYPHER_OP_GT", ">"},
	OpLessThanEqual:    {"CYPHER_OP_LTE", "<="},
	OpGreaterThanEqual: {"CYPHER_OP_GTE", ">="},
	OpPlus:             {"CYPHER_OP_PLUS", "+"},
	OpMinus:            {"CYPHER_OP_MINUS", "-"},
	OpMult:             {"CYPHER_OP_MULT", "*"},
	OpDiv:              {"CYPHER_OP_DIV", "/"},
	OpMod:              {"CYPHER_OP_MOD", "%"},
	OpPow:              {"CYPHER_OP_POW", "^"},
	OpUnaryPlus:        {"CYPHER_OP_UNARY_PLUS", "+"},
	OpUnaryMinus:       {"CYPHER_OP_UNARY_MINUS", "-"},
	OpSubscript:        {"CYPHER_OP_SUBSCRIPT", "[]"},
	OpMapProjection:    {"CYPHER_OP_MAP_PROJECTION", "{}"},
	OpRegex:            {"CYPHER_OP_REGEX", "=~"},
	OpIn:               {"CYPHER_OP_IN", "IN"},
	OpStartsWith:       {"CYPHER_OP_STARTS_WITH", "STARTS WITH"},
	OpEndsWith:         {"CYPHER_OP_ENDS_WITH", "ENDS WITH"},
	OpContains:         {"CYPHER_OP_CONTAINS", "CONTAINS"},
	OpIsNull:           {"CYPHER_OP_IS_NULL", "IS NULL"},
	OpIsNotNull:        {"CYPHER_OP_IS_NOT_NULL", "IS NOT NULL"},
	OpProperty:         {"CYPHER_OP_PROPERTY", "."},
	OpLabel:            {"CYPHER_OP_LABEL", ":"},
}

// UnknownOperatorName is returned by Name for operators outside the known set.
const UnknownOperatorName = "CYPHER_OP_UNKNOWN"

// Operators returns every known operator in registry order.
func Operators() []Operator {
	ops := make([]Operator, 0, operatorCount)

	for op := range operatorCount {
		ops = append(ops, op)
	}

	return ops
}

// Valid reports whether the operator is one of the declared operators.
func (op Operator) Valid() bool {
	return op >= 0 && op < operatorCount
}

// Name returns the symbolic name, e.g. "CYPHER_OP_AND".
func (op Operator) Name() string {
	if !op.Valid() {
		return UnknownOperatorName
	}

	return operatorInfos[op].name
}

// String returns the operator as written in a query.
func (op Operator) String() string {
	if !op.Valid() {
		return "?"
	}

	return operatorInfos[op].symbol
}

// Postfix reports whether a unary operator is written after its argument.
func (op Operator) Postfix() bool {
	return op == OpIsNull || op == OpIsNotNull
}

// Direction is the direction of a relationship pattern.
type Direction int

// Relationship directions.
const (
	DirInbound Direction = iota
	DirOutbound
	DirBidirectional
)

// String returns the arrow form of the direction.
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "<-"
	case DirOutbound:
		return "->"
	case DirBidirectional:
		return "-"
	default:
		return "?"
	}
}
