package commands

import "github.com/spf13/cobra"

func init() {
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage save backups",
	Long: `Manage backups of the Noita save slot.

Backups live next to save00 in the saves folder and are named
<prefix><label>_<YYYYMMDDhhmmss>. Listing is lexicographic, so backups
with different labels are not in chronological order.`,
	Example: `  # Back up the current save
  nsm backup create before-boss

  # List backups
  nsm backup list

  # Activate a backup, picking it interactively
  nsm backup restore --fuzzy

  # Delete a backup without confirmation
  nsm backup delete BACKUP_old_20240101120000 --yes

  See Also:
    nsm backup list    - List backups
    nsm backup restore - Activate a backup
    nsm backup create  - Back up the current save
    nsm backup delete  - Delete a backup`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}
