package cypherast_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

const richQuery = `CYPHER 3.5 EXPLAIN
MATCH p = (a:Person {name: $name})-[r:KNOWS|LIKES*1..3]->(b)
WHERE a.age > 18 AND 1 < b.age <= 99 AND NOT b:Robot
WITH DISTINCT a, count(*) AS total, [x IN b.tags WHERE x STARTS WITH 'g' | toUpper(x)] AS tags
ORDER BY total DESC SKIP 1 LIMIT 10
UNWIND tags AS tag
RETURN a {.name, tag: tag}, CASE WHEN total > 1 THEN 'many' ELSE 'one' END;
// trailing
CREATE INDEX ON :Person(name);
:schema`

func walk(nodes []cypher.Node, fn func(node cypher.Node)) {
	for _, node := range nodes {
		fn(node)
		walk(node.Children(), fn)
	}
}

func TestExtract_KeySetInvariant(t *testing.T) {
	t.Parallel()

	result, err := cypher.Parse(richQuery)
	require.NoError(t, err)

	engine := cypherast.NewEngine()
	extractor := engine.Extractor()
	ids := cypherast.AssignIdentities(result.Roots())

	walk(result.Roots(), func(node cypher.Node) {
		props := extractor.Extract(node, ids)

		applicable := make(map[string]cypherast.Family)
		for _, entry := range engine.Tables().Applicable(node.Kind()) {
			applicable[entry.Name] = entry.Family
		}

		for _, key := range props.Keys() {
			_, ok := applicable[key]
			assert.True(t, ok, "%s has unexpected property %q", node.Kind().Name(), key)
		}

		for name, family := range applicable {
			if _, ok := props.Get(name); !ok {
				assert.Equal(t, cypherast.FamilyAST, family,
					"%s is missing non-optional property %q", node.Kind().Name(), name)
			}
		}
	})
}

func TestExtract_RefsPointIntoWalk(t *testing.T) {
	t.Parallel()

	result, err := cypher.Parse(richQuery)
	require.NoError(t, err)

	extractor := cypherast.NewEngine().Extractor()
	ids := cypherast.AssignIdentities(result.Roots())

	walk(result.Roots(), func(node cypher.Node) {
		extractor.Extract(node, ids).Range(func(name string, v cypherast.Value) bool {
			switch typed := v.(type) {
			case cypherast.Ref:
				assert.GreaterOrEqual(t, typed.ID, 0, name)
				assert.Equal(t, name, typed.Role)
			case cypherast.RefList:
				for _, ref := range typed {
					assert.GreaterOrEqual(t, ref.ID, 0, name)
				}
			}

			return true
		})
	})
}

func extractRoot(t *testing.T, text string) (*cypher.Statement, *cypherast.Extractor, cypherast.Identities) {
	t.Helper()

	result, err := cypher.Parse(text)
	require.NoError(t, err)
	require.NotEmpty(t, result.Roots())

	statement, ok := result.Roots()[0].(*cypher.Statement)
	require.True(t, ok)

	return statement, cypherast.NewEngine().Extractor(), cypherast.AssignIdentities(result.Roots())
}

func TestExtract_AbsentASTOmitted(t *testing.T) {
	t.Parallel()

	statement, extractor, ids := extractRoot(t, "RETURN 1")
	ret := statement.Body.(*cypher.Query).Clauses[0]

	props := extractor.Extract(ret, ids)
	for _, name := range []string{"order_by", "skip", "limit"} {
		_, ok := props.Get(name)
		assert.False(t, ok, name)
	}

	assert.Equal(t, []string{"distinct", "include_existing", "projections"}, props.Keys())
}

func TestExtract_EmptyASTListKept(t *testing.T) {
	t.Parallel()

	statement, extractor, ids := extractRoot(t, "RETURN 1")

	props := extractor.Extract(statement, ids)
	options, ok := props.Get("options")
	require.True(t, ok)
	assert.Empty(t, options)

	raw, err := json.Marshal(props)
	require.NoError(t, err)
	assert.JSONEq(t, `{"options":[],"body":{"id":1,"role":"body"}}`, string(raw))
}

func TestExtract_ComparisonChain(t *testing.T) {
	t.Parallel()

	statement, extractor, ids := extractRoot(t, "RETURN 1 < 2 <= 3")
	ret := statement.Body.(*cypher.Query).Clauses[0].(*cypher.Return)
	comparison := ret.Projections[0].(*cypher.Projection).Expression

	props := extractor.Extract(comparison, ids)

	ops, ok := props.Get("operators")
	require.True(t, ok)
	assert.Equal(t, cypherast.OperatorList{"CYPHER_OP_LT", "CYPHER_OP_LTE"}, ops)

	args, ok := props.Get("arguments")
	require.True(t, ok)

	refs := args.(cypherast.RefList)
	require.Len(t, refs, 3)

	for _, ref := range refs {
		assert.Equal(t, "argument", ref.Role)
	}
}

func TestExtract_ScalarFamilies(t *testing.T) {
	t.Parallel()

	statement, extractor, ids := extractRoot(t, "MATCH (a)<-[:R]-(b) RETURN -a.x, 'hi', 1.5")
	query := statement.Body.(*cypher.Query)
	match := query.Clauses[0].(*cypher.Match)
	path := match.Pattern.(*cypher.Pattern).Paths[0].(*cypher.PatternPath)
	rel := path.Elems[1]

	dir, _ := extractor.Extract(rel, ids).Get("direction")
	assert.Equal(t, cypherast.Direction("CYPHER_REL_INBOUND"), dir)

	projections := query.Clauses[1].(*cypher.Return).Projections

	unary := projections[0].(*cypher.Projection).Expression
	op, _ := extractor.Extract(unary, ids).Get("operator")
	assert.Equal(t, cypherast.Operator("CYPHER_OP_UNARY_MINUS"), op)

	str := projections[1].(*cypher.Projection).Expression
	value, _ := extractor.Extract(str, ids).Get("value")
	assert.Equal(t, cypherast.String("hi"), value)

	float := projections[2].(*cypher.Projection).Expression
	valuestr, _ := extractor.Extract(float, ids).Get("valuestr")
	assert.Equal(t, cypherast.String("1.5"), valuestr)

	optional, _ := extractor.Extract(match, ids).Get("optional")
	assert.Equal(t, cypherast.Bool(false), optional)
}

func TestAssignIdentities_PreOrder(t *testing.T) {
	t.Parallel()

	result, err := cypher.Parse("RETURN 1; RETURN 2")
	require.NoError(t, err)

	ids := cypherast.AssignIdentities(result.Roots())

	var order []int

	walk(result.Roots(), func(node cypher.Node) {
		order = append(order, ids[node])
	})

	for idx, id := range order {
		assert.Equal(t, idx, id)
	}

	assert.Equal(t, -1, ids.Ref(nil, "x").ID)
}

func TestValueFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value cypherast.Value
		want  string
	}{
		{cypherast.String("a"), `"a"`},
		{cypherast.Bool(true), "true"},
		{cypherast.Direction("CYPHER_REL_OUTBOUND"), "CYPHER_REL_OUTBOUND"},
		{cypherast.Operator("CYPHER_OP_AND"), "CYPHER_OP_AND"},
		{cypherast.Ref{ID: 3, Role: "body"}, "@3"},
		{cypherast.RefList{{ID: 1}, {ID: 2}}, "[@1, @2]"},
		{cypherast.RefList{}, "[]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cypherast.Format(tt.value))
	}
}

func TestValueJSON_EmptyLists(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(cypherast.RefList(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	raw, err = json.Marshal(cypherast.OperatorList(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestProperties_Order(t *testing.T) {
	t.Parallel()

	props := cypherast.NewProperties()
	props.Set("b", cypherast.Bool(true))
	props.Set("a", cypherast.String("x"))
	props.Set("b", cypherast.Bool(false))

	assert.Equal(t, []string{"b", "a"}, props.Keys())

	raw, err := json.Marshal(props)
	require.NoError(t, err)
	assert.Equal(t, `{"b":false,"a":"x"}`, string(raw))

	clone := props.Clone()
	props.Delete("b")
	assert.Equal(t, 1, props.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestExtract_NilListElementPanics(t *testing.T) {
	t.Parallel()

	result, err := cypher.Parse("RETURN 1, 2")
	require.NoError(t, err)

	tables := cypherast.NewTablesFrom(
		cypherast.ASTListEntry(cypher.KindStatement, "broken", "item", func(n *cypher.Statement) []cypher.Node {
			return []cypher.Node{n.Body, nil}
		}),
	)
	extractor := cypherast.NewExtractor(cypherast.NewTypeRegistry(), cypherast.NewOperatorRegistry(), tables)
	ids := cypherast.AssignIdentities(result.Roots())

	assert.PanicsWithValue(t, "cypherast: CYPHER_AST_STATEMENT.broken has a nil element at 1", func() {
		extractor.Extract(result.Roots()[0], ids)
	})
}
