package cypher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
)

func TestKinds_RegistryOrder(t *testing.T) {
	t.Parallel()

	kinds := cypher.Kinds()

	assert.Equal(t, cypher.KindStatement, kinds[0])
	assert.Equal(t, cypher.KindError, kinds[len(kinds)-1])

	seen := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		assert.True(t, kind.Valid())
		assert.False(t, seen[kind.Name()], "duplicate name %s", kind.Name())

		seen[kind.Name()] = true
	}
}

func TestKind_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CYPHER_AST_MATCH", cypher.KindMatch.Name())
	assert.Equal(t, "CYPHER_AST_NODE_ID_LOOKUP", cypher.KindNodeIDLookup.Name())
	assert.Equal(t, cypher.UnknownKindName, cypher.Kind(-3).Name())
	assert.Equal(t, "MATCH", cypher.KindMatch.String())
}

func TestInstanceOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kind  cypher.Kind
		super cypher.Kind
		want  bool
	}{
		{"self", cypher.KindMatch, cypher.KindMatch, true},
		{"clause", cypher.KindMatch, cypher.KindQueryClause, true},
		{"not an expression", cypher.KindMatch, cypher.KindExpression, false},
		{"filter is a list comprehension", cypher.KindFilter, cypher.KindListComprehension, true},
		{"filter is an expression", cypher.KindFilter, cypher.KindExpression, true},
		{"named path is a pattern path", cypher.KindNamedPath, cypher.KindPatternPath, true},
		{"named path is an expression", cypher.KindNamedPath, cypher.KindExpression, true},
		{"true is boolean", cypher.KindTrue, cypher.KindBoolean, true},
		{"line comment", cypher.KindLineComment, cypher.KindComment, true},
		{"invalid kind", cypher.Kind(1000), cypher.KindExpression, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, cypher.InstanceOf(tt.kind, tt.super))
		})
	}
}

func TestKind_Parent(t *testing.T) {
	t.Parallel()

	parent, ok := cypher.KindOnMatch.Parent()
	assert.True(t, ok)
	assert.Equal(t, cypher.KindMergeAction, parent)

	_, ok = cypher.KindStatement.Parent()
	assert.False(t, ok)
}

func TestOperator_Name(t *testing.T) {
	t.Parallel()

	ops := cypher.Operators()

	assert.Equal(t, cypher.OpOr, ops[0])
	assert.Equal(t, "CYPHER_OP_NEQUAL", cypher.OpNotEqual.Name())
	assert.Equal(t, "CYPHER_OP_IS_NOT_NULL", cypher.OpIsNotNull.Name())
	assert.Equal(t, cypher.UnknownOperatorName, cypher.Operator(99).Name())
	assert.Equal(t, "STARTS WITH", cypher.OpStartsWith.String())
	assert.True(t, cypher.OpIsNull.Postfix())
	assert.False(t, cypher.OpNot.Postfix())
}

func TestDirection_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<-", cypher.DirInbound.String())
	assert.Equal(t, "->", cypher.DirOutbound.String())
	assert.Equal(t, "-", cypher.DirBidirectional.String())
}
