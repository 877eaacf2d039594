package cypherast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

func TestFamilies_Order(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, 7)
	for _, family := range cypherast.Families() {
		names = append(names, family.String())
	}

	assert.Equal(t, []string{"direction", "operator", "operator-list", "bool", "string", "ast-list", "ast"}, names)
}

func TestTables_DefaultsValidate(t *testing.T) {
	t.Parallel()

	tables := cypherast.NewTables()
	require.NoError(t, tables.Validate(cypherast.NewTypeRegistry()))
	assert.Positive(t, tables.Len())

	assert.Len(t, tables.Family(cypherast.FamilyDirection), 1)
	assert.Len(t, tables.Family(cypherast.FamilyOperator), 2)
	assert.Len(t, tables.Family(cypherast.FamilyOperatorList), 1)
	assert.Len(t, tables.Family(cypherast.FamilyString), 14)
}

func TestTables_ValidateDetectsCollision(t *testing.T) {
	t.Parallel()

	tables := cypherast.NewTablesFrom(
		cypherast.BoolEntry(cypher.KindReturn, "distinct", func(n *cypher.Return) bool { return n.Distinct }),
		cypherast.ASTEntry(cypher.KindQueryClause, "distinct", func(n cypher.Node) cypher.Node { return nil }),
	)

	err := tables.Validate(cypherast.NewTypeRegistry())
	require.Error(t, err)
	require.ErrorIs(t, err, cypherast.ErrTableConflict)
	assert.Contains(t, err.Error(), "CYPHER_AST_RETURN")
}

func TestTables_ValidateUnregisteredKind(t *testing.T) {
	t.Parallel()

	tables := cypherast.NewTablesFrom(
		cypherast.StringEntry(cypher.KindIdentifier, "name", func(n *cypher.Identifier) string { return n.Name }),
	)

	err := tables.Validate(cypherast.NewTypeRegistryOf([]cypher.Kind{cypher.KindQuery}))
	require.ErrorIs(t, err, cypherast.ErrTableConflict)
}

func TestTables_Applicable(t *testing.T) {
	t.Parallel()

	tables := cypherast.NewTables()

	names := func(kind cypher.Kind) []string {
		var out []string
		for _, entry := range tables.Applicable(kind) {
			out = append(out, entry.Name)
		}

		return out
	}

	assert.Equal(t, []string{"direction", "reltypes", "identifier", "varlength", "properties"},
		names(cypher.KindRelPattern))
	assert.Equal(t, []string{"operators", "arguments"}, names(cypher.KindComparison))
	// Named paths inherit the elements list from pattern paths.
	assert.Equal(t, []string{"elements", "identifier", "path"}, names(cypher.KindNamedPath))
	assert.Empty(t, names(cypher.KindNull))
}

func TestTables_FamilyOutOfRange(t *testing.T) {
	t.Parallel()

	tables := cypherast.NewTables()
	assert.Nil(t, tables.Family(cypherast.Family(99)))
	assert.Equal(t, "unknown", cypherast.Family(99).String())
}
