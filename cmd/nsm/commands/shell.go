package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/launcher"
	"github.com/thoreinstein/nsm/internal/logging"
	"github.com/thoreinstein/nsm/internal/shell"
)

func init() {
	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive menu",
	Long: `Open the interactive menu. This is what plain "nsm" does.

The menu offers backing up the current save, activating a backup, launching
Noita or the multiplayer proxy, deleting backups and editing settings.
Settings edits are only written when you choose "Save & Return".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runShell(cmd)
	},
}

func runShell(cmd *cobra.Command) error {
	logger := logging.FromContext(cmd.Context())
	out := cmd.OutOrStdout()

	sh := shell.New(shell.Options{
		In:           cmd.InOrStdin(),
		Out:          out,
		Settings:     current,
		SettingsPath: settingsPath(),
		Launcher: &launcher.Launcher{
			Stdin:  os.Stdin,
			Stdout: out,
			Stderr: cmd.ErrOrStderr(),
			Logger: logger,
		},
		Logger: logger,
		TTY:    logging.Interactive(cmd.InOrStdin(), out),
	})
	return sh.Run(cmd.Context())
}
