package commands

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/cli/prompt"
	"github.com/thoreinstein/nsm/internal/copier"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
)

// Colors for command output.
const (
	colorOK     = color.FgGreen
	colorWarn   = color.FgYellow
	colorErr    = color.FgRed
	colorHeader = color.Bold
)

// Report prints err for the user and returns the process exit code.
func Report(w io.Writer, err error) int {
	exitErr := errors.FromKind(err)
	if exitErr == nil {
		return errors.ExitSuccess
	}

	if exitErr.Code == errors.ExitFatal {
		fatal := colorFor(w, color.FgRed, color.Bold)
		fatal.Fprintln(w, "FATAL: the save slot may be inconsistent.")
		fatal.Fprintf(w, "Error: %v\n", exitErr)
		var rerr *backup.RestoreError
		if errors.As(err, &rerr) && rerr.TempPath != "" {
			fatal.Fprintf(w, "Your previous save is preserved at %s. Do not delete it.\n", rerr.TempPath)
		}
	} else if exitErr.Err != nil {
		colorFor(w, colorErr).Fprintf(w, "Error: %v\n", exitErr)
	}
	if exitErr.Suggestion != "" {
		fmt.Fprintf(w, "  %s\n", exitErr.Suggestion)
	}
	return exitErr.Code
}

// colorFor returns a color that is only applied when w is a terminal.
func colorFor(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if logging.SupportsColor(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// newManager builds a backup manager over the loaded settings that draws
// progress and restore phases on w.
func newManager(w io.Writer, logger *slog.Logger) *backup.Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return backup.NewManager(current,
		backup.WithLogger(logger),
		backup.WithProgress(progressPrinter(w)),
		backup.WithObserver(func(p backup.Phase) {
			switch p {
			case backup.PhaseSnapshotting:
				fmt.Fprintln(w, "Creating temporary backup of current save...")
			case backup.PhaseReplacing:
				fmt.Fprintln(w, "Activating save...")
			case backup.PhaseRollingBack:
				fmt.Fprintln(w, "Restoring temporary backup...")
			}
		}),
	)
}

func progressPrinter(w io.Writer) func(copier.Progress) {
	return func(p copier.Progress) {
		if quiet {
			return
		}
		fmt.Fprintf(w, "\rProgress: [%d%%]", p.Percent)
		if p.Percent == 100 {
			fmt.Fprintln(w)
		}
	}
}

// restorable drops the restore snapshot from names.
func restorable(mgr *backup.Manager, names []string) []string {
	temp := backup.TempName(mgr.Prefix())
	return slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == temp })
}

// pickBackup asks the user for one of names, with the fuzzy finder when
// fuzzy is set and a numbered prompt otherwise. Backing out returns
// errors.ErrUserCancelled.
func pickBackup(p *prompt.Prompter, prefix string, names []string, verb string, fuzzy bool) (string, error) {
	if len(names) == 0 {
		return "", errors.Wrap(errors.ErrPathNotFound, "no backups found")
	}

	if fuzzy {
		idx, err := fuzzyfinder.Find(
			names,
			func(i int) string { return names[i] },
			fuzzyfinder.WithPromptString(verb+"> "),
			fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
				if i == -1 {
					return ""
				}
				label, created, ok := backup.ParseName(prefix, names[i])
				if !ok {
					return names[i]
				}
				return fmt.Sprintf("Label:   %s\nCreated: %s", label, created.Format("2006-01-02 15:04:05"))
			}),
		)
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errors.ErrUserCancelled
		}
		if err != nil {
			return "", errors.Wrap(err, "interactive selection failed")
		}
		return names[idx], nil
	}

	fmt.Fprintf(p.Writer(), "Choose a backup to %s:\n", verb)
	idx, err := p.Select(fmt.Sprintf("Enter the number of the backup to %s (type X to exit): ", verb), names)
	if err != nil {
		return "", err
	}
	return names[idx], nil
}

// cancelled reports a user cancel and swallows it.
func cancelled(w io.Writer, err error) error {
	if errors.Is(err, errors.ErrUserCancelled) {
		fmt.Fprintln(w, "Cancelled.")
		return nil
	}
	return err
}
