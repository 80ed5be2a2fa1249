package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/editor"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
	"github.com/thoreinstein/nsm/internal/settings"
)

var settingsExportFormat string

func init() {
	settingsExportCmd.Flags().StringVarP(&settingsExportFormat, "format", "f", "yaml",
		"output format: yaml, toml, json")
	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd,
		settingsResetCmd, settingsExportCmd, settingsPathCmd, settingsEditCmd)
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change nsm settings",
	Long: `View and change the settings file (key=value, one per line).

Known keys:
  ` + settings.KeySavesFolder + `  folder holding save00 and the backups
  ` + settings.KeyProxyExe + `      Noita MP proxy executable
  ` + settings.KeyGameExe + `          Noita executable
  ` + settings.KeyBackupPrefix + `              prefix of backup folder names

Unknown keys are kept as they are. Without a subcommand, lists all values.`,
	Example: `  nsm settings
  nsm settings set path_to_noita_saves_folder ~/saves
  nsm settings export --format toml

See Also: nsm doctor`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSettingsListWithWriter(cmd.OutOrStdout(), current)
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSettingsListWithWriter(cmd.OutOrStdout(), current)
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettingsGetWithWriter(cmd.OutOrStdout(), current, args[0])
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting and save the file",
	Long: `Change a setting and write the settings file.

Paths are not required to exist; run "nsm doctor" to check them.`,
	Example: `  nsm settings set backup_prefix SNAP_
  nsm settings set path_to_noita_exe "/games/Noita/noita.exe"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettingsSetWithWriter(cmd.OutOrStdout(), current, settingsPath(), args[0], args[1])
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings and save the file",
	Long:  `Restore every known key to its default, drop unknown keys, and write the settings file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSettingsResetWithWriter(cmd.OutOrStdout(), current, settingsPath())
	},
}

var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print settings as YAML, TOML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSettingsExportWithWriter(cmd.OutOrStdout(), current, settingsExportFormat)
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), settingsPath())
	},
}

var settingsEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the settings file in $EDITOR",
	Long: `Open the settings file in your editor ($EDITOR, then $VISUAL, then nano
or vi). The file is created with the current values if it does not exist,
and checked when the editor exits.`,
	Example: `  nsm settings edit
  EDITOR="code --wait" nsm settings edit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e := &editor.Editor{Logger: logging.FromContext(cmd.Context())}
		return runSettingsEditWithWriter(cmd.Context(), cmd.OutOrStdout(), e, settingsPath())
	},
}

func runSettingsEditWithWriter(ctx context.Context, w io.Writer, e *editor.Editor, path string) error {
	fmt.Fprintf(w, "Location: %s\n", path)
	edited, err := e.EditSettings(ctx, path, current)
	if errors.Is(err, errors.ErrParse) {
		return errors.NewUserError(err, "Every line must be key=value. Run: nsm settings edit")
	}
	if err != nil {
		return err
	}
	*current = *edited
	for _, verr := range current.Validate() {
		fmt.Fprintf(w, "warning: %v\n", verr)
	}
	return nil
}

func runSettingsListWithWriter(w io.Writer, s *settings.Settings) error {
	_, err := w.Write(s.Marshal())
	return err
}

func runSettingsGetWithWriter(w io.Writer, s *settings.Settings, key string) error {
	v, ok := s.Get(key)
	if !ok {
		return errors.NewUserError(errors.Newf("unknown setting %q", key), "Run: nsm settings list")
	}
	fmt.Fprintln(w, v)
	return nil
}

func runSettingsSetWithWriter(w io.Writer, s *settings.Settings, path, key, value string) error {
	if err := s.Set(key, value); err != nil {
		return err
	}
	if err := s.Save(path); err != nil {
		return errors.Wrap(err, "saving settings")
	}
	v, _ := s.Get(key)
	fmt.Fprintf(w, "Set %s = %s\n", key, v)
	return nil
}

func runSettingsResetWithWriter(w io.Writer, s *settings.Settings, path string) error {
	s.Reset()
	if err := s.Save(path); err != nil {
		return errors.Wrap(err, "saving settings")
	}
	fmt.Fprintf(w, "Default settings written to %s\n", path)
	return nil
}

func runSettingsExportWithWriter(w io.Writer, s *settings.Settings, format string) error {
	f, err := settings.ParseFormat(format)
	if err != nil {
		return err
	}
	data, err := s.Export(f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
