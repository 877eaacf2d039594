package cypherast_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

type testNode struct {
	cypherast.NodeSpec[*testNode]
}

func (n *testNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"id":         n.ID,
		"kind":       n.Kind,
		"instanceof": n.InstanceOf,
		"children":   n.Children,
		"props":      n.Props,
		"start":      n.Start,
		"end":        n.End,
	})
}

func (n *testNode) each(fn func(node *testNode)) {
	fn(n)

	for _, child := range n.Children {
		child.each(fn)
	}
}

func find(forest []*testNode, kind string) []*testNode {
	var out []*testNode

	for _, root := range forest {
		root.each(func(node *testNode) {
			if node.Kind == kind {
				out = append(out, node)
			}
		})
	}

	return out
}

var testCtor = cypherast.ConstructorFunc[*testNode](func(spec cypherast.NodeSpec[*testNode]) (*testNode, error) {
	return &testNode{NodeSpec: spec}, nil
})

func TestParse_ReturnLiteral(t *testing.T) {
	t.Parallel()

	forest, err := cypherast.Parse(context.Background(), testCtor, "RETURN 1")
	require.NoError(t, err)
	require.Len(t, forest, 1)

	root := forest[0]
	assert.Equal(t, "CYPHER_AST_STATEMENT", root.Kind)
	assert.Equal(t, 0, root.ID)

	queries := find(forest, "CYPHER_AST_QUERY")
	require.Len(t, queries, 1)

	clauses, ok := queries[0].Props.Get("clauses")
	require.True(t, ok)
	require.Len(t, clauses, 1)

	returns := find(forest, "CYPHER_AST_RETURN")
	require.Len(t, returns, 1)
	assert.Equal(t, returns[0].ID, clauses.(cypherast.RefList)[0].ID)
	assert.Equal(t, "clause", clauses.(cypherast.RefList)[0].Role)

	distinct, _ := returns[0].Props.Get("distinct")
	assert.Equal(t, cypherast.Bool(false), distinct)

	projections, _ := returns[0].Props.Get("projections")
	assert.Len(t, projections, 1)
}

func TestParse_RelationshipPattern(t *testing.T) {
	t.Parallel()

	forest, err := cypherast.Parse(context.Background(), testCtor, "MATCH (a)-[:KNOWS]->(b) RETURN a")
	require.NoError(t, err)

	rels := find(forest, "CYPHER_AST_REL_PATTERN")
	require.Len(t, rels, 1)

	direction, _ := rels[0].Props.Get("direction")
	assert.Equal(t, cypherast.Direction("CYPHER_REL_OUTBOUND"), direction)

	reltypes, _ := rels[0].Props.Get("reltypes")
	require.Len(t, reltypes, 1)
	assert.Equal(t, "reltype", reltypes.(cypherast.RefList)[0].Role)

	labels := find(forest, "CYPHER_AST_RELTYPE")
	require.Len(t, labels, 1)
	assert.Equal(t, labels[0].ID, reltypes.(cypherast.RefList)[0].ID)

	assert.Equal(t, []string{"CYPHER_AST_REL_PATTERN"}, rels[0].InstanceOf)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	forest, err := cypherast.Parse(context.Background(), testCtor, "RETURN 'unterminated")
	require.Error(t, err)
	assert.Nil(t, forest)
	require.ErrorIs(t, err, cypherast.ErrParse)

	var parseErr *cypherast.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
	assert.Equal(t, 7, parseErr.Offset)

	var syntax *cypher.SyntaxError
	assert.ErrorAs(t, err, &syntax)
}

func TestParse_SpanInvariant(t *testing.T) {
	t.Parallel()

	forest, err := cypherast.Parse(context.Background(), testCtor, richQuery)
	require.NoError(t, err)

	var check func(node *testNode)

	check = func(node *testNode) {
		assert.LessOrEqual(t, 0, node.Start)
		assert.LessOrEqual(t, node.Start, node.End)
		assert.LessOrEqual(t, node.End, len(richQuery))

		for _, child := range node.Children {
			assert.LessOrEqual(t, node.Start, child.Start, "%s contains %s", node.Kind, child.Kind)
			assert.LessOrEqual(t, child.End, node.End, "%s contains %s", node.Kind, child.Kind)
			check(child)
		}
	}

	for _, root := range forest {
		check(root)
	}
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()

	first, err := cypherast.Parse(context.Background(), testCtor, richQuery)
	require.NoError(t, err)

	second, err := cypherast.Parse(context.Background(), testCtor, richQuery)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)

	b, err := json.Marshal(second)
	require.NoError(t, err)

	assert.JSONEq(t, string(a), string(b))
}

func TestParse_ConstructionError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0

	failing := cypherast.ConstructorFunc[*testNode](func(spec cypherast.NodeSpec[*testNode]) (*testNode, error) {
		calls++

		if spec.Kind == "CYPHER_AST_INTEGER" {
			return nil, boom
		}

		return &testNode{NodeSpec: spec}, nil
	})

	forest, err := cypherast.Parse(context.Background(), failing, "RETURN 1, 2")
	require.Error(t, err)
	assert.Nil(t, forest)
	require.ErrorIs(t, err, cypherast.ErrConstruction)
	require.ErrorIs(t, err, boom)

	ce, ok := cypherast.IsConstructionError(err)
	require.True(t, ok)
	assert.Equal(t, "CYPHER_AST_INTEGER", ce.Kind)
	// The walk stops at the first integer: no parent is ever constructed.
	assert.Equal(t, 1, calls)
}

func TestParseWith_ReleasesResultOnce(t *testing.T) {
	t.Parallel()

	failing := cypherast.ConstructorFunc[*testNode](func(spec cypherast.NodeSpec[*testNode]) (*testNode, error) {
		if spec.Kind == "CYPHER_AST_INTEGER" {
			return nil, errors.New("boom")
		}

		return &testNode{NodeSpec: spec}, nil
	})

	tests := []struct {
		name    string
		ctor    cypherast.Constructor[*testNode]
		text    string
		wantErr error
	}{
		{name: "success", ctor: testCtor, text: "RETURN 1"},
		{name: "construction failure", ctor: failing, text: "RETURN 1", wantErr: cypherast.ErrConstruction},
		{name: "recovered input", ctor: testCtor, text: "x ;'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			observer := &recordingObserver{}
			engine := cypherast.NewEngine(cypherast.WithObserver(observer), cypherast.WithRecovery())

			_, err := cypherast.ParseWith(context.Background(), engine, tt.ctor, tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.Len(t, observer.stats, 1)

			result := observer.stats[0].Result
			require.NotNil(t, result)
			assert.True(t, result.Released())
			// A second Release would have recorded ErrReleased.
			require.NoError(t, result.Err())
			assert.Nil(t, result.Roots())
		})
	}
}

func TestParseWith_ParseFailureHasNoResult(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	engine := cypherast.NewEngine(cypherast.WithObserver(observer))

	_, err := cypherast.ParseWith(context.Background(), engine, testCtor, "RETURN (")
	require.ErrorIs(t, err, cypherast.ErrParse)

	require.Len(t, observer.stats, 1)
	assert.Nil(t, observer.stats[0].Result)
}

func TestParse_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cypherast.Parse(ctx, testCtor, "RETURN 1")
	require.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	mu    sync.Mutex
	stats []cypherast.Stats
}

func (o *recordingObserver) ObserveParse(_ context.Context, stats cypherast.Stats) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stats = append(o.stats, stats)
}

func TestEngine_Observer(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	engine := cypherast.NewEngine(cypherast.WithObserver(observer))

	forest, err := cypherast.ParseWith(context.Background(), engine, testCtor, "RETURN 1")
	require.NoError(t, err)

	nodes := 0
	forest[0].each(func(*testNode) { nodes++ })

	_, err = cypherast.ParseWith(context.Background(), engine, testCtor, "RETURN (")
	require.Error(t, err)

	require.Len(t, observer.stats, 2)
	assert.Equal(t, 8, observer.stats[0].InputBytes)
	assert.Equal(t, 1, observer.stats[0].Roots)
	assert.Equal(t, nodes, observer.stats[0].Nodes)
	require.NoError(t, observer.stats[0].Err)
	assert.ErrorIs(t, observer.stats[1].Err, cypherast.ErrParse)
}

func TestEngine_Recovery(t *testing.T) {
	t.Parallel()

	engine := cypherast.NewEngine(cypherast.WithRecovery())

	forest, err := cypherast.ParseWith(context.Background(), engine, testCtor, "RETURN 1; MATCH (; RETURN 2")
	require.NoError(t, err)
	require.Len(t, forest, 3)

	assert.Equal(t, "CYPHER_AST_ERROR", forest[1].Kind)

	value, ok := forest[1].Props.Get("value")
	require.True(t, ok)
	assert.Equal(t, cypherast.String("MATCH ("), value)
}

func TestEngine_RecoveryAfterSemicolon(t *testing.T) {
	t.Parallel()

	engine := cypherast.NewEngine(cypherast.WithRecovery())

	tests := []struct {
		text  string
		kinds []string
	}{
		{text: "x ;'", kinds: []string{"CYPHER_AST_ERROR", "CYPHER_AST_ERROR"}},
		{text: "RETURN 1; x ';", kinds: []string{"CYPHER_AST_STATEMENT", "CYPHER_AST_ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			forest, err := cypherast.ParseWith(context.Background(), engine, testCtor, tt.text)
			require.NoError(t, err)

			kinds := make([]string, 0, len(forest))
			for _, root := range forest {
				kinds = append(kinds, root.Kind)
			}

			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestDefault_Shared(t *testing.T) {
	t.Parallel()

	assert.Same(t, cypherast.Default(), cypherast.Default())
	require.NoError(t, cypherast.Default().Tables().Validate(cypherast.Default().Types()))
}

func TestParseWith_InputLimit(t *testing.T) {
	t.Parallel()

	engine := cypherast.NewEngine(cypherast.WithMaxInputBytes(8), cypherast.WithRecovery())
	assert.Equal(t, 8, engine.MaxInputBytes())
	assert.True(t, engine.Recovers())

	_, err := cypherast.ParseWith[*testNode](context.Background(), engine, testCtor, "RETURN 12345")
	require.ErrorIs(t, err, cypherast.ErrInputTooLarge)

	forest, err := cypherast.ParseWith[*testNode](context.Background(), engine, testCtor, "RETURN 1")
	require.NoError(t, err)
	assert.Len(t, forest, 1)
}
