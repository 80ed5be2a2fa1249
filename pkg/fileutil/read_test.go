package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileWithLimit(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "small")
	require.NoError(t, os.WriteFile(small, []byte("a=b\n"), 0o644))

	big := filepath.Join(dir, "big")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", 64)), 0o644))

	t.Run("within limit", func(t *testing.T) {
		data, err := ReadFileWithLimit(small, 0)
		require.NoError(t, err)
		assert.Equal(t, "a=b\n", string(data))
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := ReadFileWithLimit(big, 16)
		assert.True(t, errors.Is(err, ErrFileTooLarge), "got %v", err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFileWithLimit(filepath.Join(dir, "nope"), 0)
		assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
	})
}
