package shell

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/fatih/color"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/cli/prompt"
	"github.com/thoreinstein/nsm/internal/copier"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/launcher"
	"github.com/thoreinstein/nsm/internal/paths"
	"github.com/thoreinstein/nsm/internal/settings"
)

const clearScreen = "\033[H\033[2J"

// Runner starts external executables.
type Runner interface {
	Run(ctx context.Context, path string, args ...string) (launcher.Result, error)
}

// Options configures a Shell.
type Options struct {
	In  io.Reader
	Out io.Writer

	// Settings is edited in place by the settings menu.
	Settings *settings.Settings

	// SettingsPath is where "Save & Return" writes.
	SettingsPath string

	// Launcher defaults to launcher.New with Out as the output streams.
	Launcher Runner

	// Copier overrides the copy engine used for backups and restores.
	Copier backup.TreeCopier

	Logger *slog.Logger

	// TTY enables screen clearing and color.
	TTY bool
}

// Shell is the interactive menu loop.
type Shell struct {
	prompt       *prompt.Prompter
	out          io.Writer
	settings     *settings.Settings
	settingsPath string
	manager      *backup.Manager
	launcher     Runner
	logger       *slog.Logger
	tty          bool

	// keepScreen skips the next clear so a message printed just before the
	// menu redraw stays readable.
	keepScreen bool

	errColor   *color.Color
	fatalColor *color.Color
	okColor    *color.Color

	// fatal is set once a restore ends in an inconsistent save slot.
	fatal error
}

// New builds a Shell.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sh := &Shell{
		prompt:       prompt.NewPrompterWithIO(opts.In, opts.Out),
		out:          opts.Out,
		settings:     opts.Settings,
		settingsPath: opts.SettingsPath,
		launcher:     opts.Launcher,
		logger:       logger,
		tty:          opts.TTY,
		errColor:     color.New(color.FgRed),
		fatalColor:   color.New(color.FgRed, color.Bold),
		okColor:      color.New(color.FgGreen),
	}
	if !opts.TTY {
		for _, c := range []*color.Color{sh.errColor, sh.fatalColor, sh.okColor} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{sh.errColor, sh.fatalColor, sh.okColor} {
			c.EnableColor()
		}
	}
	if sh.launcher == nil {
		sh.launcher = &launcher.Launcher{Stdin: opts.In, Stdout: opts.Out, Stderr: opts.Out, Logger: logger}
	}

	mopts := []backup.Option{
		backup.WithLogger(logger),
		backup.WithProgress(sh.printProgress),
		backup.WithObserver(sh.printPhase),
	}
	if opts.Copier != nil {
		mopts = append(mopts, backup.WithCopier(opts.Copier))
	}
	sh.manager = backup.NewManager(opts.Settings, mopts...)
	return sh
}

// Run shows the main menu until the user exits or input ends. It returns
// the fatal restore error, if one happened during the session.
func (sh *Shell) Run(ctx context.Context) error {
	sh.logger.Info("shell started", "settings", sh.settings)
	for {
		sh.clear()
		mainMenu.render(sh.out)

		input, err := sh.prompt.Ask("Enter choice: ")
		if err != nil {
			fmt.Fprintln(sh.out)
			return sh.exit(err)
		}

		item, ok := mainMenu.lookup(input)
		if !ok {
			sh.invalid()
			continue
		}

		switch item.key {
		case "1":
			err = sh.backup()
		case "2":
			err = sh.activate()
		case "3":
			err = sh.launch(ctx, "Noita", sh.settings.GameExe)
		case "4":
			err = sh.launch(ctx, "Noita MP Proxy", sh.settings.ProxyExe)
		case "5":
			err = sh.delete()
		case "6":
			err = sh.settingsLoop()
		case "7":
			sh.clear()
			fmt.Fprint(sh.out, helpText)
			sh.prompt.WaitForEnter()
		case "9":
			fmt.Fprintln(sh.out, "Exiting...")
			return sh.exit(nil)
		}
		if errors.Is(err, prompt.ErrInputClosed) {
			fmt.Fprintln(sh.out)
			return sh.exit(err)
		}
	}
}

func (sh *Shell) exit(err error) error {
	if err != nil && !errors.Is(err, prompt.ErrInputClosed) {
		sh.logger.Error("shell stopped", "error", err)
		return err
	}
	sh.logger.Info("exiting application")
	return sh.fatal
}

func (sh *Shell) clear() {
	if sh.tty && !sh.keepScreen {
		fmt.Fprint(sh.out, clearScreen)
	}
	sh.keepScreen = false
}

func (sh *Shell) invalid() {
	fmt.Fprintln(sh.out, "Invalid choice, please try again.")
	sh.keepScreen = true
}

func (sh *Shell) failure(format string, args ...any) {
	sh.errColor.Fprintf(sh.out, format+"\n", args...)
}

func (sh *Shell) printProgress(p copier.Progress) {
	fmt.Fprintf(sh.out, "\rProgress: [%d%%]", p.Percent)
	if p.Percent == 100 {
		fmt.Fprintln(sh.out)
	}
}

func (sh *Shell) printPhase(p backup.Phase) {
	switch p {
	case backup.PhaseSnapshotting:
		fmt.Fprintln(sh.out, "Creating temporary backup of current save...")
	case backup.PhaseReplacing:
		fmt.Fprintln(sh.out, "Activating save...")
	case backup.PhaseRollingBack:
		fmt.Fprintln(sh.out, "Restoring temporary backup...")
	}
}

func (sh *Shell) backup() error {
	label, err := sh.prompt.Ask("Enter a name for the backup save (type nothing and hit enter to cancel): ")
	if err != nil {
		return err
	}

	out := sh.manager.Create(label)
	switch out.Status {
	case backup.StatusCancelled:
		return nil
	case backup.StatusDone:
		sh.okColor.Fprintf(sh.out, "Backup created at %s\n", out.Path)
	default:
		sh.failure("Failed to create backup: %v", out.Err)
	}
	sh.prompt.WaitForEnter()
	return nil
}

// chooseBackup lists backups and asks for one. ok is false when there is
// nothing to pick or the user backed out.
func (sh *Shell) chooseBackup(mode string, includeTemp bool) (name string, ok bool, err error) {
	sh.clear()
	fmt.Fprintf(sh.out, "Choose a backup to %s:\n", mode)

	names, err := sh.manager.List()
	if err != nil {
		sh.failure("Failed to list backups: %v", err)
		sh.prompt.WaitForEnter()
		return "", false, nil
	}
	if !includeTemp {
		temp := backup.TempName(sh.manager.Prefix())
		names = slices.DeleteFunc(names, func(n string) bool { return n == temp })
	}
	if len(names) == 0 {
		fmt.Fprintln(sh.out, "No backups found.")
		sh.prompt.WaitForEnter()
		return "", false, nil
	}

	idx, err := sh.prompt.Select("Enter the number of the backup to "+mode+" (type X to exit): ", names)
	switch {
	case errors.Is(err, prompt.ErrInputClosed):
		return "", false, err
	case err != nil:
		return "", false, nil
	}
	return names[idx], true, nil
}

func (sh *Shell) activate() error {
	name, ok, err := sh.chooseBackup("activate", false)
	if !ok {
		return err
	}

	out := sh.manager.Restore(name)
	switch out.Status {
	case backup.StatusDone:
		sh.okColor.Fprintln(sh.out, "Save restored.")
		if out.TempRemoved {
			fmt.Fprintln(sh.out, "Temporary backup removed.")
		} else if _, err := os.Stat(sh.manager.TempPath()); err == nil {
			sh.failure("Temporary backup %s could not be removed; delete it once save00 looks right.", sh.manager.TempPath())
		}
	case backup.StatusFatal:
		sh.fatal = out.Err
		sh.fatalColor.Fprintln(sh.out, "!!! RESTORE AND ROLLBACK BOTH FAILED !!!")
		sh.fatalColor.Fprintf(sh.out, "Your save slot may be damaged. Do NOT delete %s;\n", sh.manager.TempPath())
		sh.fatalColor.Fprintf(sh.out, "it is the only complete copy of your previous save. Copy it into %s by hand.\n", sh.settings.SaveSlot())
		sh.fatalColor.Fprintf(sh.out, "Error: %v\n", out.Err)
	default:
		sh.failure("Failed to activate save: %v", out.Err)
		if errors.Is(out.Err, backup.ErrTempBackupExists) {
			fmt.Fprintf(sh.out, "Check that save00 is intact, then delete %s.\n", backup.TempName(sh.manager.Prefix()))
		}
	}
	sh.prompt.WaitForEnter()
	return nil
}

func (sh *Shell) delete() error {
	name, ok, err := sh.chooseBackup("delete", true)
	if !ok {
		return err
	}

	yes, err := sh.prompt.Confirm(fmt.Sprintf("Are you sure you want to delete %s? (Y/N): ", name))
	if err != nil {
		return err
	}
	if !yes {
		fmt.Fprintln(sh.out, "Deletion cancelled.")
		sh.prompt.WaitForEnter()
		return nil
	}

	out := sh.manager.Delete(name)
	if out.OK() {
		sh.okColor.Fprintln(sh.out, "Backup deleted.")
	} else {
		sh.failure("Failed to delete backup: %v", out.Err)
	}
	sh.prompt.WaitForEnter()
	return nil
}

func (sh *Shell) launch(ctx context.Context, what, path string) error {
	fmt.Fprintf(sh.out, "Launching %s...\n", what)
	res, err := sh.launcher.Run(ctx, path)
	switch {
	case err != nil:
		sh.failure("Failed to launch %s: %v", what, err)
	case res.ExitCode != 0:
		sh.failure("Command failed with return code %d: %s", res.ExitCode, path)
	default:
		fmt.Fprintf(sh.out, "%s exited.\n", what)
	}
	sh.prompt.WaitForEnter()
	return nil
}

// settingsLoop runs the settings menu until Save & Return.
func (sh *Shell) settingsLoop() error {
	for {
		sh.clear()
		settingsMenu.render(sh.out)

		input, err := sh.prompt.Ask("Enter choice: ")
		if err != nil {
			return err
		}
		item, ok := settingsMenu.lookup(input)
		if !ok {
			sh.invalid()
			continue
		}

		switch item.key {
		case "1":
			err = sh.changePath("Noita save folder", settings.KeySavesFolder, settings.RequireDir)
		case "2":
			err = sh.changePath("Noita MP Proxy", settings.KeyProxyExe, settings.RequireFile)
		case "3":
			if err := sh.settings.Save(sh.settingsPath); err != nil {
				sh.failure("Failed to save current variables: %v", err)
				sh.prompt.WaitForEnter()
				continue
			}
			sh.logger.Info("settings saved", "path", sh.settingsPath)
			return nil
		case "9":
			sh.settings.Reset()
			sh.logger.Info("settings reset to defaults")
			fmt.Fprintln(sh.out, "Default settings restored. Choose Save & Return to keep them.")
			sh.keepScreen = true
		}
		if err != nil {
			return err
		}
	}
}

func (sh *Shell) changePath(what, key string, check func(string) error) error {
	fmt.Fprintf(sh.out, "Please drag and drop the %s to the console.\n", what)
	input, err := sh.prompt.Ask("Enter path: ")
	if err != nil {
		return err
	}
	path := paths.CleanInput(input)

	if err := check(path); err != nil {
		fmt.Fprintln(sh.out, "Invalid path. Please try again.")
		sh.logger.Warn("invalid path entered", "key", key, "path", path, "error", err)
		return nil
	}
	if err := sh.settings.Set(key, path); err != nil {
		sh.failure("Invalid path: %v", err)
		return nil
	}
	fmt.Fprintf(sh.out, "Path to %s has been changed.\n", what)
	sh.logger.Info("path changed", "key", key, "path", path)
	return nil
}
