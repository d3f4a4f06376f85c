package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docproof-cli/internal/utils"
)

func TestSafeWriteFileReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(p, []byte("old"), 0o644))

	require.NoError(t, utils.SafeWriteFile(p, []byte("new")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be gone")
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing", "out.bin")
	assert.Error(t, utils.SafeWriteFile(p, []byte("x")))
}

func TestEnsureDirAndFileExists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "out.docx")
	require.NoError(t, utils.EnsureDir(p))
	assert.False(t, utils.FileExists(p))
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	assert.True(t, utils.FileExists(p))
	assert.False(t, utils.FileExists(filepath.Dir(p)))
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))
}
