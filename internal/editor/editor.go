// Package editor opens the settings file in the user's text editor and
// checks the result.
package editor

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/launcher"
	"github.com/thoreinstein/nsm/internal/settings"
)

// Runner starts the editor process.
type Runner interface {
	Run(ctx context.Context, path string, args ...string) (launcher.Result, error)
}

// Editor edits settings files with an external program.
type Editor struct {
	// Command is the editor command line, e.g. "code --wait". Empty means
	// Detect().
	Command string

	Runner Runner
	Logger *slog.Logger
}

// Detect returns the editor command line: $EDITOR, then $VISUAL, then nano,
// then vi (notepad on Windows).
func Detect(getenv func(string) string) string {
	if e := strings.TrimSpace(getenv("EDITOR")); e != "" {
		return e
	}
	if v := strings.TrimSpace(getenv("VISUAL")); v != "" {
		return v
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}

// EditSettings writes s to path if the file does not exist yet, opens it
// in the editor and loads it back. A file left malformed is reported with
// ErrParse; the returned settings are then the defaults.
func (e *Editor) EditSettings(ctx context.Context, path string, s *settings.Settings) (*settings.Settings, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolving settings path")
	}

	if _, err := settings.Load(abs); errors.Is(err, errors.ErrPathNotFound) {
		if err := s.Save(abs); err != nil {
			return nil, errors.Wrap(err, "writing settings before edit")
		}
	}

	if err := e.open(ctx, abs); err != nil {
		return nil, err
	}

	edited, err := settings.Load(abs)
	if err != nil {
		e.logger().Warn("edited settings do not parse", "path", abs, "error", err)
		return edited, err
	}
	e.logger().Info("settings edited", "path", abs)
	return edited, nil
}

func (e *Editor) open(ctx context.Context, path string) error {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		fields = strings.Fields(Detect(os.Getenv))
	}

	runner := e.Runner
	if runner == nil {
		runner = launcher.New(e.logger())
	}

	res, err := runner.Run(ctx, fields[0], append(fields[1:], path)...)
	if err != nil {
		return errors.Wrapf(err, "running editor %q", fields[0])
	}
	if !res.Success() {
		return errors.Newf("editor %q exited with code %d", fields[0], res.ExitCode)
	}
	return nil
}

func (e *Editor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
