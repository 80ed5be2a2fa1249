// Package commands implements the CLI commands for nsm.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/config"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
	"github.com/thoreinstein/nsm/internal/settings"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile overrides the diagnostic log location. "-" disables the file.
var logFile string

// settingsFlag overrides the settings file location.
var settingsFlag string

// configFlag points at an explicit config.yaml.
var configFlag string

var (
	// appConfig is the loaded config.yaml, or defaults.
	appConfig = config.Default()

	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error

	// current is the settings every command works on.
	current *settings.Settings

	// logCloser releases the diagnostic log file.
	logCloser io.Closer
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default from config, else text)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		`diagnostic log file, "-" to disable (default from config)`)
	rootCmd.PersistentFlags().StringVar(&settingsFlag, "settings", "",
		"settings file (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"config file (default ./config.yaml or $XDG_CONFIG_HOME/nsm/config.yaml)")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, err := config.Load(configFlag)
	if err != nil {
		configLoadErr = err
		return
	}
	appConfig = cfg
}

var rootCmd = &cobra.Command{
	Use:   "nsm",
	Short: "Back up, restore and manage Noita save games",
	Long: `nsm manages snapshots of the Noita save slot (save00).

Backups are full copies of save00 stored next to it in the saves folder,
named <prefix><label>_<timestamp>. Activating a backup first snapshots the
current save to <prefix>TEMP so a failed restore can be rolled back.

Run without a subcommand to open the interactive menu.`,
	Example: `  # Open the interactive menu
  nsm

  # Take a backup labelled "before-boss"
  nsm backup create before-boss

  # Pick a backup to activate
  nsm backup restore --fuzzy

  # Check that paths and saves look sane
  nsm doctor

  See Also: nsm settings, nsm doctor`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewUserError(configLoadErr, "Fix or remove the config file, or run: nsm init")
		}
		loadSettings(cmd.ErrOrStderr())
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeLog()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runShell(cmd)
	},
}

// setupLogging configures the default logger based on verbosity flags and
// the config file.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			if val, ok := os.LookupEnv("NSM_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2
				case "2":
					v = 3
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format := logFormat
	if format == "" {
		format = appConfig.LogFormat
	}

	opts := &slog.HandlerOptions{Level: level}
	var primary slog.Handler
	switch logging.Format(format) {
	case logging.FormatJSON:
		primary = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatText, "":
		primary = logging.NewHandler(cmd.ErrOrStderr(), opts)
	default:
		return errors.NewUserError(errors.Newf("invalid log format %q", format), "use text or json")
	}

	handlers := []slog.Handler{primary}

	path := logFile
	if path == "" {
		path = appConfig.LogFile
	}
	closeLog()
	if path != "" && path != "-" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return errors.NewSystemError(err, "failed to open log file, pass --log-file - to disable it")
		}
		logCloser = f
		// the diagnostic log always records transitions, even without -v
		handlers = append(handlers, logging.NewFileHandler(f, min(level, slog.LevelInfo)))
	}

	var handler slog.Handler = primary
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// settingsPath returns the settings file in effect.
func settingsPath() string {
	if settingsFlag != "" {
		return settingsFlag
	}
	return appConfig.SettingsFile
}

// loadSettings fills current. A missing or broken file falls back to
// defaults with a warning, never an error.
func loadSettings(w io.Writer) {
	path := settingsPath()
	s, err := settings.Load(path)
	current = s
	switch {
	case err == nil:
		slog.Info("settings loaded", "path", path)
	case errors.Is(err, errors.ErrPathNotFound):
		slog.Info("settings file not found, using defaults", "path", path)
	default:
		slog.Warn("settings file unreadable, using defaults", "path", path, "error", err)
		if !quiet {
			io.WriteString(w, "Error loading settings, using default settings: "+err.Error()+"\n")
		}
	}
}

// Execute runs the root command.
func Execute() error {
	defer closeLog()
	return rootCmd.Execute()
}
