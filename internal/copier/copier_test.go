package copier

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/nsm/internal/errors"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestTree_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "save00")
	dst := filepath.Join(tmp, "BACKUP_run_20240101120000")

	writeTree(t, src, map[string]string{
		"player.xml":            "<Entity/>",
		"world/area_0.bin":      "chunk0",
		"world/area_1.bin":      "chunk1",
		"stats/sessions/a.xml":  "stats",
		"persistent/flags/none": "",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))

	old := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(src, "player.xml"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(src, "world"), old, old))

	require.NoError(t, Copy(src, dst, nil))

	assert.Equal(t, snapshot(t, src), snapshot(t, dst))

	info, err := os.Stat(filepath.Join(dst, "player.xml"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "file mtime = %v, want %v", info.ModTime(), old)

	info, err = os.Stat(filepath.Join(dst, "world"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "dir mtime = %v, want %v", info.ModTime(), old)
}

func TestTree_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeTree(t, src, map[string]string{"run.sh": "#!/bin/sh"})
	require.NoError(t, os.Chmod(filepath.Join(src, "run.sh"), 0o750))

	dst := filepath.Join(tmp, "dst")
	require.NoError(t, Copy(src, dst, nil))

	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o750), info.Mode().Perm())
}

func TestTree_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeTree(t, src, map[string]string{"real.txt": "data"})
	require.NoError(t, os.Symlink("real.txt", filepath.Join(src, "link.txt")))

	dst := filepath.Join(tmp, "dst")
	require.NoError(t, Copy(src, dst, nil))

	target, err := os.Readlink(filepath.Join(dst, "link.txt"))
	require.NoError(t, err)
	assert.Equal(t, "real.txt", target)
}

func TestTree_ProgressMonotonic(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		files["d/"+name] = name
	}
	writeTree(t, src, files)

	var events []Progress
	require.NoError(t, Copy(src, filepath.Join(tmp, "dst"), func(p Progress) {
		events = append(events, p)
	}))

	require.Len(t, events, 7)
	last := -1
	for i, p := range events {
		assert.GreaterOrEqual(t, p.Percent, last, "event %d went backwards", i)
		assert.Equal(t, i+1, p.Copied)
		assert.Equal(t, 7, p.Total)
		last = p.Percent
	}
	assert.Equal(t, 100, events[len(events)-1].Percent)
}

func TestTree_EmptySource(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	require.NoError(t, os.Mkdir(src, 0o755))

	var events []Progress
	require.NoError(t, Copy(src, filepath.Join(tmp, "dst"), func(p Progress) {
		events = append(events, p)
	}))

	require.Len(t, events, 1)
	assert.Equal(t, 100, events[0].Percent)
	assert.Equal(t, 0, events[0].Total)
	assert.DirExists(t, filepath.Join(tmp, "dst"))
}

func TestTree_Preconditions(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeTree(t, src, map[string]string{"f": "x"})
	existing := filepath.Join(tmp, "existing")
	require.NoError(t, os.Mkdir(existing, 0o755))
	plain := filepath.Join(tmp, "plain.txt")
	require.NoError(t, os.WriteFile(plain, nil, 0o644))

	tests := []struct {
		name     string
		src, dst string
		wantKind error
	}{
		{"missing source", filepath.Join(tmp, "nope"), filepath.Join(tmp, "out1"), errors.ErrPathNotFound},
		{"source is a file", plain, filepath.Join(tmp, "out2"), errors.ErrPathNotFound},
		{"destination exists", src, existing, errors.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Copy(tt.src, tt.dst, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.NotEmpty(t, cerr.Path)
		})
	}

	// the existing destination must be left alone
	entries, err := os.ReadDir(existing)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTree_CreatesParents(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeTree(t, src, map[string]string{"f": "x"})

	dst := filepath.Join(tmp, "a", "b", "dst")
	require.NoError(t, Copy(src, dst, nil))
	assert.FileExists(t, filepath.Join(dst, "f"))
}

func TestTree_StopEarly(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	writeTree(t, src, map[string]string{"a": "1", "b": "2", "c": "3"})
	dst := filepath.Join(tmp, "dst")

	n := 0
	for _, err := range Tree(src, dst) {
		require.NoError(t, err)
		n++
		break
	}
	assert.Equal(t, 1, n)

	copied, err := CountFiles(dst)
	require.NoError(t, err)
	assert.Equal(t, 1, copied)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		copied, total, want int
	}{
		{0, 0, 100},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 200, 1},
		{5, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.copied, tt.total), "Percent(%d, %d)", tt.copied, tt.total)
	}
}
