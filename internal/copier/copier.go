package copier

import (
	"io"
	"io/fs"
	"iter"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/thoreinstein/nsm/internal/errors"
)

// Progress reports how far a single Tree copy has come.
type Progress struct {
	// Copied is the number of files copied so far.
	Copied int

	// Total is the number of files counted before copying started.
	Total int

	// Percent is round(Copied/Total*100). It is 100 when Total is 0.
	Percent int

	// Path is the source path of the file just copied, relative to the
	// source root. Empty on the final event of an empty tree.
	Path string
}

// Error describes a failed filesystem operation during a copy.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: errors.Classify(err)}
}

// Engine copies directory trees. The zero value is ready to use.
type Engine struct{}

// Tree implements the package-level Tree.
func (Engine) Tree(src, dst string) iter.Seq2[Progress, error] {
	return Tree(src, dst)
}

// Tree returns an iterator that copies src to dst, yielding progress after
// each file. On failure it yields a zero Progress with a non-nil *Error and
// stops. Stopping the range early leaves dst partially copied.
func Tree(src, dst string) iter.Seq2[Progress, error] {
	return func(yield func(Progress, error) bool) {
		total, err := preflight(src, dst)
		if err != nil {
			yield(Progress{}, err)
			return
		}

		c := &treeCopy{src: src, dst: dst, total: total, yield: yield}
		if err := c.run(); err != nil {
			if !errors.Is(err, errStopped) {
				yield(Progress{}, err)
			}
			return
		}

		if c.copied != total || total == 0 {
			// The tree changed size underneath us, or was empty.
			yield(Progress{Copied: c.copied, Total: c.copied, Percent: 100}, nil)
		}
	}
}

// Copy drains Tree, passing every progress event to onProgress (which may be nil).
func Copy(src, dst string, onProgress func(Progress)) error {
	for p, err := range Tree(src, dst) {
		if err != nil {
			return err
		}
		if onProgress != nil {
			onProgress(p)
		}
	}
	return nil
}

// CountFiles returns the number of non-directory entries under root.
func CountFiles(root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return newError("walk", path, err)
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Percent returns round(copied/total*100), treating an empty total as done.
func Percent(copied, total int) int {
	if total <= 0 {
		return 100
	}
	p := int(math.Round(float64(copied) / float64(total) * 100))
	return min(p, 100)
}

func preflight(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, newError("stat", src, err)
	}
	if !info.IsDir() {
		return 0, &Error{Op: "stat", Path: src,
			Err: errors.Wrap(errors.ErrPathNotFound, "source is not a directory")}
	}
	if _, err := os.Lstat(dst); err == nil {
		return 0, &Error{Op: "create", Path: dst,
			Err: errors.Wrap(errors.ErrAlreadyExists, "destination exists")}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, newError("stat", dst, err)
	}
	return CountFiles(src)
}

var errStopped = errors.New("iteration stopped by caller")

type treeCopy struct {
	src, dst string
	total    int
	copied   int
	yield    func(Progress, error) bool

	// directories whose times are applied once their contents are written
	dirs []dirTimes
}

type dirTimes struct {
	path string
	info fs.FileInfo
}

func (c *treeCopy) run() error {
	if err := os.MkdirAll(filepath.Dir(c.dst), 0o755); err != nil {
		return newError("mkdir", filepath.Dir(c.dst), err)
	}

	err := filepath.WalkDir(c.src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return newError("walk", path, err)
		}

		rel, err := filepath.Rel(c.src, path)
		if err != nil {
			return newError("rel", path, err)
		}
		target := filepath.Join(c.dst, rel)

		info, err := d.Info()
		if err != nil {
			return newError("stat", path, err)
		}

		switch {
		case d.IsDir():
			if err := os.Mkdir(target, info.Mode().Perm()|0o700); err != nil {
				return newError("mkdir", target, err)
			}
			c.dirs = append(c.dirs, dirTimes{path: target, info: info})
			return nil
		case info.Mode()&fs.ModeSymlink != 0:
			if err := copySymlink(path, target); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(path, target, info); err != nil {
				return err
			}
		default:
			return &Error{Op: "copy", Path: path,
				Err: errors.Mark(errors.Newf("unsupported file type %s", info.Mode().Type()), errors.ErrIO)}
		}

		c.copied++
		p := Progress{Copied: c.copied, Total: c.total, Percent: Percent(c.copied, c.total), Path: rel}
		if !c.yield(p, nil) {
			return errStopped
		}
		return nil
	})
	if err != nil {
		return err
	}

	// deepest first so a parent's mtime is not bumped by a later child fixup
	for _, d := range slices.Backward(c.dirs) {
		if err := os.Chmod(d.path, d.info.Mode().Perm()); err != nil {
			return newError("chmod", d.path, err)
		}
		if err := os.Chtimes(d.path, d.info.ModTime(), d.info.ModTime()); err != nil {
			return newError("chtimes", d.path, err)
		}
	}
	return nil
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return newError("open", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return newError("create", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return newError("copy", src, err)
	}
	if err := out.Close(); err != nil {
		return newError("close", dst, err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return newError("chmod", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return newError("chtimes", dst, err)
	}
	return nil
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return newError("readlink", src, err)
	}
	if err := os.Symlink(link, dst); err != nil {
		return newError("symlink", dst, err)
	}
	return nil
}
