package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/skiron-cli/internal/utils"
)

func TestSafeWriteFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, utils.SafeWriteFile(path, []byte("a;b;\n")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a;b;\n", string(b))
	assert.NoFileExists(t, path+".tmp")
	assert.Equal(t, int64(5), utils.FileSize(path))
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	t.Parallel()
	err := utils.SafeWriteFile(filepath.Join(t.TempDir(), "nope", "out.csv"), []byte("x"))
	assert.Error(t, err)
}

func TestEnsureDirNested(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, utils.EnsureDir(dir))
	assert.DirExists(t, dir)
	require.NoError(t, utils.EnsureDir(dir))
}

func TestExpandPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, n := range []string{"b.conf", "a.conf", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	got := utils.ExpandPaths([]string{
		filepath.Join(dir, "c.txt"),
		filepath.Join(dir, "*.conf"),
		filepath.Join(dir, "a.conf"),
		filepath.Join(dir, "missing.conf"),
	})
	assert.Equal(t, []string{
		filepath.Join(dir, "c.txt"),
		filepath.Join(dir, "a.conf"),
		filepath.Join(dir, "b.conf"),
		filepath.Join(dir, "missing.conf"),
	}, got)
}

func TestFileSizeMissing(t *testing.T) {
	t.Parallel()
	assert.Zero(t, utils.FileSize(filepath.Join(t.TempDir(), "none")))
}
