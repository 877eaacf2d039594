package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypherast"
)

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

// writeFile writes content to name under a fresh temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRootCommand_HelpAndSubcommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantOut string
		args    []string
		wantErr bool
	}{
		{wantOut: "parses Cypher query text into syntax trees", args: []string{"--help"}},
		{wantOut: "syntax forest", args: []string{"mcp", "--help"}},
		{wantOut: "/api/parse", args: []string{"server", "--help"}},
		{wantOut: "diagnostics", args: []string{"lsp", "--help"}},
		{args: []string{"unknown"}, wantErr: true},
	}

	for _, tt := range tests {
		out, err := execute(t, "", tt.args...)
		if tt.wantErr {
			require.Error(t, err, "args %v", tt.args)

			continue
		}

		require.NoError(t, err, "args %v", tt.args)
		assert.Contains(t, out, tt.wantOut, "args %v", tt.args)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cypherast "), out)
	assert.Contains(t, out, "commit:")
}

func TestParseCommand_JSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "parse", "-e", "MATCH (n) RETURN n;")
	require.NoError(t, err)

	var forest []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &forest))
	require.Len(t, forest, 1)
	assert.Equal(t, "CYPHER_AST_STATEMENT", forest[0]["type"])
	assert.InDelta(t, 0, forest[0]["start"], 0)
}

func TestParseCommand_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   []string
	}{
		{format: formatCompact, want: []string{`"type":"CYPHER_AST_STATEMENT"`}},
		{format: formatYAML, want: []string{"type: CYPHER_AST_STATEMENT", "- children:"}},
		{format: formatTree, want: []string{"statement @0 0..", "clause: RETURN", "└── "}},
		{format: formatDump, want: []string{"statement", "RETURN"}},
	}

	for _, tt := range tests {
		out, err := execute(t, "", "parse", "-e", "RETURN 1;", "-f", tt.format)
		require.NoError(t, err, tt.format)

		for _, want := range tt.want {
			assert.Contains(t, out, want, tt.format)
		}
	}

	out, err := execute(t, "", "parse", "-e", "RETURN 1;", "-f", formatNone)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParseCommand_Errors(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "", "parse", "-e", "RETURN 1;", "-f", "xml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = execute(t, "", "parse", "--strict", "-e", "MATCH (n RETURN n;")
	require.ErrorIs(t, err, cypherast.ErrParse)

	_, err = execute(t, "", "parse", t.TempDir())
	require.ErrorIs(t, err, ErrDirectoryPath)
}

func TestParseCommand_RecoversByDefault(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "parse", "-f", formatCompact, "-e", "MATCH (n RETURN n;\nRETURN 1;")
	require.NoError(t, err)

	var forest []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &forest))
	require.Len(t, forest, 2)
	assert.Equal(t, "CYPHER_AST_ERROR", forest[0]["type"])
	assert.Equal(t, "CYPHER_AST_STATEMENT", forest[1]["type"])
}

func TestParseCommand_FileStdinAndOutput(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "query.cypher", "RETURN 1;")

	fromFile, err := execute(t, "", "parse", path)
	require.NoError(t, err)

	fromStdin, err := execute(t, "RETURN 1;", "parse", "-")
	require.NoError(t, err)
	assert.JSONEq(t, fromFile, fromStdin)

	outPath := filepath.Join(t.TempDir(), "forest.json")

	out, err := execute(t, "", "parse", path, "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.JSONEq(t, fromFile, string(written))
}

func TestFindCommand(t *testing.T) {
	t.Parallel()

	const query = "MATCH (n) WHERE n.age > 30 RETURN n;"

	out, err := execute(t, "", "find", "-e", query, "-t", "comparison", "-f", formatJSON)
	require.NoError(t, err)

	var matches []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "CYPHER_AST_COMPARISON", matches[0]["type"])
	assert.Equal(t, "predicate", matches[0]["role"])
	assert.Contains(t, matches[0]["text"], "> 30")

	table, err := execute(t, "", "find", "-e", query, "--instanceof", "EXPRESSION", "--start", "16")
	require.NoError(t, err)
	assert.Contains(t, table, "KIND")
	assert.Contains(t, table, "comparison")
	assert.NotContains(t, table, "@0 ")

	_, err = execute(t, "", "find", "-e", query, "-t", "NO_SUCH_KIND")
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = execute(t, "", "find", "-e", query, "-t", "comparsion")
	require.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorContains(t, err, "did you mean CYPHER_AST_COMPARISON?")
}

func TestKindsCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "kinds", "--instanceof", "query_clause", "-f", formatJSON)
	require.NoError(t, err)

	var infos []cypherast.KindInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.NotEmpty(t, infos)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
		assert.Contains(t, info.InstanceOf, "CYPHER_AST_QUERY_CLAUSE")
	}

	assert.Contains(t, names, "CYPHER_AST_MATCH")
	assert.NotContains(t, names, "CYPHER_AST_COMPARISON")

	table, err := execute(t, "", "kinds")
	require.NoError(t, err)
	assert.Contains(t, table, "CYPHER_AST_STATEMENT")
	assert.Contains(t, table, "TOTAL: ")
}

func TestDiffCommand(t *testing.T) {
	t.Parallel()

	before := writeFile(t, "before.cypher", "RETURN 1;")
	after := writeFile(t, "after.cypher", "RETURN 2;")

	unified, err := execute(t, "", "diff", before, after)
	require.NoError(t, err)
	assert.Contains(t, unified, "--- "+before)
	assert.Contains(t, unified, "+++ "+after)
	assert.Contains(t, unified, `-        expression: integer valuestr="1"`)
	assert.Contains(t, unified, `+        expression: integer valuestr="2"`)
	assert.Contains(t, unified, "   body: query")

	summary, err := execute(t, "", "diff", before, after, "-f", "summary")
	require.NoError(t, err)
	assert.Contains(t, summary, "Change Summary:")

	raw, err := execute(t, "", "diff", before, after, "-f", formatJSON)
	require.NoError(t, err)

	var changes []Change
	require.NoError(t, json.Unmarshal([]byte(raw), &changes))
	assert.NotEmpty(t, changes)

	same, err := execute(t, "", "diff", before, before, "-f", "summary")
	require.NoError(t, err)
	assert.Contains(t, same, "Change Summary: 0 changes")
}

func TestStatsCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "stats", "-e", "MATCH (n) RETURN n;\nRETURN 1;")
	require.NoError(t, err)
	assert.Contains(t, out, "Source:     query")
	assert.Contains(t, out, "Statements: 2")
	assert.Contains(t, out, "Skipped:    0 malformed statements")
	assert.Contains(t, out, "CYPHER_AST_STATEMENT")
}
