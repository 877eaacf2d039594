package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUserFilePath(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "q.cypher", "RETURN 1;")

	resolved, err := resolveUserFilePath(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))

	_, err = resolveUserFilePath("  ")
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = resolveUserFilePath("a\x00b")
	require.ErrorIs(t, err, ErrPathContainsNUL)

	_, err = resolveUserFilePath(t.TempDir())
	require.ErrorIs(t, err, ErrDirectoryPath)

	_, err = resolveUserFilePath(filepath.Join(t.TempDir(), "missing.cypher"))
	require.Error(t, err)
}

func TestSafeReadFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "q.cypher", "RETURN 1;")

	content, resolved, err := safeReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RETURN 1;", string(content))
	assert.Equal(t, path, resolved)
}

func TestSanitizeAndTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MATCH (n) RETURN  n", sanitizeForTerminal("MATCH (n)\nRETURN\t\x07 n"))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdefghij", 2))
	assert.Equal(t, "éé...", truncate("éééééé", 5))
}
