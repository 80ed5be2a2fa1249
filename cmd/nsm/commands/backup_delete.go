package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/cli/prompt"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
)

var (
	backupDeleteYes   bool
	backupDeleteFuzzy bool
)

func init() {
	backupDeleteCmd.Flags().BoolVarP(&backupDeleteYes, "yes", "y", false,
		"delete without asking for confirmation")
	backupDeleteCmd.Flags().BoolVar(&backupDeleteFuzzy, "fuzzy", false,
		"pick the backup with a fuzzy finder")
	backupCmd.AddCommand(backupDeleteCmd)
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a backup",
	Long: `Delete a backup directory. No snapshot is taken first.

Only names carrying the backup prefix are accepted, so save00 and other
folders cannot be removed this way. The restore snapshot can be deleted
once you have checked save00.`,
	Example: `  nsm backup delete BACKUP_old_20240101120000
  nsm backup delete BACKUP_TEMP --yes
  nsm backup delete --fuzzy`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		p := prompt.NewPrompterWithIO(cmd.InOrStdin(), w)
		fuzzy := backupDeleteFuzzy && logging.Interactive(cmd.InOrStdin(), w)
		return runBackupDeleteWithWriter(w, p, newManager(w, logging.FromContext(cmd.Context())), args, fuzzy)
	},
}

func runBackupDeleteWithWriter(w io.Writer, p *prompt.Prompter, mgr *backup.Manager, args []string, fuzzy bool) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		names, err := mgr.List()
		if err != nil {
			return errors.Wrap(err, "listing backups")
		}
		name, err = pickBackup(p, mgr.Prefix(), names, "delete", fuzzy)
		if err != nil {
			return cancelled(w, err)
		}
	}

	if !backupDeleteYes {
		ok, err := p.Confirm(fmt.Sprintf("Are you sure you want to delete %s? (Y/N): ", name))
		if err != nil {
			return cancelled(w, err)
		}
		if !ok {
			fmt.Fprintln(w, "Deletion cancelled.")
			return nil
		}
	}

	out := mgr.Delete(name)
	if !out.OK() {
		return out.Err
	}
	colorFor(w, colorOK).Fprintf(w, "Deleted %s\n", out.Name)
	return nil
}
