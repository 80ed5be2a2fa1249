package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/cli/prompt"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
)

var backupRestoreFuzzy bool

func init() {
	backupRestoreCmd.Flags().BoolVar(&backupRestoreFuzzy, "fuzzy", false,
		"pick the backup with a fuzzy finder")
	backupCmd.AddCommand(backupRestoreCmd)
}

var backupRestoreCmd = &cobra.Command{
	Use:     "restore [name]",
	Aliases: []string{"activate"},
	Short:   "Activate a backup",
	Long: `Replace save00 with a backup.

The current save is first copied to <prefix>TEMP. If copying the backup in
fails, save00 is rebuilt from that snapshot and the snapshot is kept. If the
rollback fails too, nsm exits with code 3 and the snapshot is the only good
copy of the previous save.

A restore is refused while <prefix>TEMP exists. Check save00 and delete the
snapshot with "nsm backup delete" first.

Without a name you pick from a numbered list, or a fuzzy finder with --fuzzy.
Close Noita first.`,
	Example: `  # Activate a specific backup
  nsm backup restore BACKUP_before-boss_20240506070809

  # Pick interactively
  nsm backup restore --fuzzy

  See Also:
    nsm backup list - List backups`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		p := prompt.NewPrompterWithIO(cmd.InOrStdin(), w)
		fuzzy := backupRestoreFuzzy && logging.Interactive(cmd.InOrStdin(), w)
		return runBackupRestoreWithWriter(w, p, newManager(w, logging.FromContext(cmd.Context())), args, fuzzy)
	},
}

func runBackupRestoreWithWriter(w io.Writer, p *prompt.Prompter, mgr *backup.Manager, args []string, fuzzy bool) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		names, err := mgr.List()
		if err != nil {
			return errors.Wrap(err, "listing backups")
		}
		name, err = pickBackup(p, mgr.Prefix(), restorable(mgr, names), "activate", fuzzy)
		if err != nil {
			return cancelled(w, err)
		}
	}

	out := mgr.Restore(name)
	if !out.OK() {
		if errors.Is(out.Err, backup.ErrTempBackupExists) {
			return errors.NewUserError(out.Err,
				fmt.Sprintf("Check that save00 is intact, then run: nsm backup delete %s", backup.TempName(mgr.Prefix())))
		}
		return out.Err
	}

	colorFor(w, colorOK).Fprintf(w, "Save restored from %s\n", out.Name)
	if out.TempRemoved {
		fmt.Fprintln(w, "Temporary backup removed.")
	} else if _, err := os.Stat(mgr.TempPath()); err == nil {
		colorFor(w, colorWarn).Fprintf(w, "Temporary backup %s could not be removed; delete it once save00 looks right.\n", mgr.TempPath())
	}
	return nil
}
