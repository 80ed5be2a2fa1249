package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/cli/prompt"
	"github.com/thoreinstein/nsm/internal/logging"
)

func init() {
	backupCmd.AddCommand(backupCreateCmd)
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [label]",
	Short: "Back up the current save",
	Long: `Copy save00 into a new backup called <prefix><label>_<timestamp>.

Without a label you are prompted for one. An empty label cancels.`,
	Example: `  nsm backup create before-boss
  nsm backup create`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := prompt.NewPrompterWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
		return runBackupCreateWithWriter(cmd.OutOrStdout(), p, newManager(cmd.OutOrStdout(), logging.FromContext(cmd.Context())), args)
	},
}

func runBackupCreateWithWriter(w io.Writer, p *prompt.Prompter, mgr *backup.Manager, args []string) error {
	var label string
	if len(args) > 0 {
		label = args[0]
	} else {
		var err error
		label, err = p.Ask("Enter a name for the backup save (type nothing and hit enter to cancel): ")
		if err != nil {
			return cancelled(w, err)
		}
	}

	out := mgr.Create(label)
	switch out.Status {
	case backup.StatusCancelled:
		return cancelled(w, out.Err)
	case backup.StatusDone:
		colorFor(w, colorOK).Fprintf(w, "Backup created at %s\n", out.Path)
		return nil
	default:
		return out.Err
	}
}
