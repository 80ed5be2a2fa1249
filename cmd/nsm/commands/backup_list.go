package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "Output in JSON format")
	backupCmd.AddCommand(backupListCmd)
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	Long: `List the backups in the saves folder in lexicographic order.

The restore snapshot (<prefix>TEMP) is listed too when one is left over from
a failed restore.`,
	Example: `  nsm backup list
  nsm backup list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackupListWithWriter(cmd.OutOrStdout(), newManager(cmd.ErrOrStderr(), logging.FromContext(cmd.Context())))
	},
}

// backupInfoOutput represents a single backup in JSON output.
type backupInfoOutput struct {
	Name      string     `json:"name"`
	Label     string     `json:"label,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Temp      bool       `json:"temp,omitempty"`
}

func describeBackups(mgr *backup.Manager, names []string) []backupInfoOutput {
	temp := backup.TempName(mgr.Prefix())
	out := make([]backupInfoOutput, 0, len(names))
	for _, n := range names {
		info := backupInfoOutput{Name: n, Temp: n == temp}
		if label, created, ok := backup.ParseName(mgr.Prefix(), n); ok {
			info.Label = label
			info.CreatedAt = &created
		}
		out = append(out, info)
	}
	return out
}

func runBackupListWithWriter(w io.Writer, mgr *backup.Manager) error {
	names, err := mgr.List()
	if err != nil {
		return errors.Wrap(err, "listing backups")
	}
	infos := describeBackups(mgr, names)

	if backupListJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "No backups found.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Create one with: nsm backup create <label>")
		return nil
	}

	bold := colorFor(w, colorHeader)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", bold.Sprint("NAME"), bold.Sprint("LABEL"), bold.Sprint("CREATED"))
	for _, info := range infos {
		created := "-"
		if info.CreatedAt != nil {
			created = info.CreatedAt.Format("2006-01-02 15:04:05")
		}
		label := info.Label
		if info.Temp {
			label = "(restore snapshot)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, label, created)
	}
	return tw.Flush()
}
