package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write := func(rel string) string {
		t.Helper()
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# empty\n"), 0o600))
		return path
	}

	b := write("types/b.hcl")
	a := write("a.hcl")
	write("notes.txt")
	write(".cache/skipped.hcl")

	files, err := FindFiles(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	single, err := FindFiles(a, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{a}, single)

	_, err = FindFiles(filepath.Join(root, "missing"), ".hcl")
	assert.Error(t, err)
}

func TestFindFiles_RequiresExtension(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { _, _ = FindFiles(".") })
}
