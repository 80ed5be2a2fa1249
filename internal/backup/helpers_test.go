package backup

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/nsm/internal/copier"
	"github.com/thoreinstein/nsm/internal/errors"
)

// faultyCopier delegates to the real engine except for sources listed in
// fail, which leave a partial destination and then error.
type faultyCopier struct {
	fail  map[string]bool
	calls []string
}

func failing(srcs ...string) *faultyCopier {
	f := &faultyCopier{fail: map[string]bool{}}
	for _, s := range srcs {
		f.fail[s] = true
	}
	return f
}

func (f *faultyCopier) Tree(src, dst string) iter.Seq2[copier.Progress, error] {
	f.calls = append(f.calls, src+" -> "+dst)
	if !f.fail[src] {
		return copier.Tree(src, dst)
	}
	return func(yield func(copier.Progress, error) bool) {
		_ = os.MkdirAll(dst, 0o755)
		_ = os.WriteFile(filepath.Join(dst, "partial.bin"), []byte("half"), 0o644)
		yield(copier.Progress{}, &copier.Error{
			Op:   "copy",
			Path: src,
			Err:  errors.Mark(errors.New("injected failure"), errors.ErrIO),
		})
	}
}

// saveFolder lays out a saves folder with save00 holding one file.
func saveFolder(t *testing.T, slotFiles map[string]string, backups map[string]map[string]string) string {
	t.Helper()
	root := t.TempDir()
	if slotFiles != nil {
		writeFiles(t, filepath.Join(root, "save00"), slotFiles)
	}
	for name, files := range backups {
		writeFiles(t, filepath.Join(root, name), files)
	}
	return root
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// readFiles returns rel path -> content for every file under dir.
func readFiles(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
