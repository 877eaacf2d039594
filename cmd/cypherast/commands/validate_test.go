package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_ParseOutputIsValid(t *testing.T) {
	t.Parallel()

	forest, err := execute(t, "", "parse", "-e", "MATCH (n:Person) WHERE n.age > 30 RETURN n.name AS name;")
	require.NoError(t, err)

	path := writeFile(t, "forest.json", forest)

	out, err := execute(t, "", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Forest is valid")
	assert.Contains(t, out, "Nodes:")
}

func TestValidateCommand_Cypher(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "query.cypher", "RETURN 1;\nMATCH (n RETURN n;")

	out, err := execute(t, "", "validate", "--cypher", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Forest is valid")
}

func TestValidateCommand_Invalid(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.json", `[{"type": "MATCH", "instanceof": [], "children": [], "props": {},
		"start": -1, "end": 3, "role": null, "extra": 1}]`)

	out, err := execute(t, "", "validate", path)
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, out, "Forest validation failed")
	assert.Contains(t, out, "Compliance: 0%")
	assert.Contains(t, out, "Recommendations:")
	assert.Contains(t, out, "CYPHER_AST_MATCH")

	_, err = execute(t, "not json", "validate", "-")
	require.ErrorContains(t, err, "invalid JSON")
}

func TestCountNodes(t *testing.T) {
	t.Parallel()

	var data any
	require.NoError(t, json.Unmarshal([]byte(`[
		{"children": [{"children": []}, {"children": [{"children": []}]}]},
		{"children": []}
	]`), &data))

	assert.Equal(t, 5, countNodes(data))
	assert.Equal(t, 0, countNodes("x"))
}

func TestGetActualValue(t *testing.T) {
	t.Parallel()

	var data any
	require.NoError(t, json.Unmarshal([]byte(`[{"type": "X", "children": [{"start": 4, "role": null}]}]`), &data))

	assert.Equal(t, "X", getActualValue(data, "0.type"))
	assert.Equal(t, "4", getActualValue(data, "0.children.0.start"))
	assert.Empty(t, getActualValue(data, "0.children.0.role"))
	assert.Empty(t, getActualValue(data, "3.type"))
	assert.Empty(t, getActualValue(data, "0.missing"))
}

func TestClassifyRecommendation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field, description, wantKey string
	}{
		{"0.type", "Does not match pattern '^CYPHER_AST_[A-Z_]+$'", "kind"},
		{"0", "role is required", "required"},
		{"0", "Additional property extra is not allowed", "additional"},
		{"0.props.x", "Must validate one and only one schema (oneOf)", "props"},
		{"0.start", "Must be greater than or equal to 0", "span"},
		{"0.children", "Invalid type. Expected: array, given: object", "children"},
		{"0.other", "something else", ""},
	}

	for _, tt := range tests {
		key, _ := classifyRecommendation(tt.field, tt.description)
		assert.Equal(t, tt.wantKey, key, tt.description)
	}
}
