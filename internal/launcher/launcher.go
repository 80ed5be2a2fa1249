// Package launcher starts the game and the multiplayer proxy.
package launcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/thoreinstein/nsm/internal/errors"
)

// Result describes a finished process.
type Result struct {
	Path     string
	ExitCode int
	Duration time.Duration
}

// Success reports whether the process exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Launcher runs executables with their standard streams attached.
type Launcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// New returns a Launcher wired to the process's own standard streams.
func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run starts path with args, waits for it, and reports its exit code.
// The process runs in the directory containing path. A non-zero exit code
// is not an error; failing to start the process is.
func (l *Launcher) Run(ctx context.Context, path string, args ...string) (Result, error) {
	res := Result{Path: path, ExitCode: -1}

	bin, err := resolve(path)
	if err != nil {
		l.Logger.Error("launch failed", "path", path, "error", err)
		return res, err
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = filepath.Dir(bin)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	l.Logger.Info("launching", "path", bin, "args", args)
	start := time.Now()
	err = cmd.Run()
	res.Duration = time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		err = errors.Wrapf(errors.Classify(err), "running %s", path)
		l.Logger.Error("launch failed", "path", path, "error", err)
		return res, err
	}

	if res.ExitCode != 0 {
		l.Logger.Warn("process exited with non-zero status", "path", bin, "code", res.ExitCode, "duration", res.Duration)
	} else {
		l.Logger.Info("process exited", "path", bin, "duration", res.Duration)
	}
	return res, nil
}

// Run is shorthand for New(nil).Run.
func Run(ctx context.Context, path string, args ...string) (Result, error) {
	return New(nil).Run(ctx, path, args...)
}

func resolve(path string) (string, error) {
	if path == "" {
		return "", errors.Wrap(errors.ErrInvalidConfig, "no executable configured")
	}
	if !strings.ContainsAny(path, `/\`) {
		bin, err := exec.LookPath(path)
		if err != nil {
			return "", errors.Wrapf(errors.Mark(err, errors.ErrPathNotFound), "finding %s", path)
		}
		return bin, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(errors.Classify(err), "executable %s", path)
	}
	if info.IsDir() {
		return "", errors.Wrapf(errors.ErrPathNotFound, "%s is a directory", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(errors.Classify(err), "resolving %s", path)
	}
	return abs, nil
}
