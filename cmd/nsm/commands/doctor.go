package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/doctor"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/paths"
)

var (
	doctorJSON    bool
	doctorVerbose bool
	doctorFix     bool
	doctorRedact  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "all", false,
		"show passed checks too")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"write a default settings file if none exists")
	doctorCmd.Flags().BoolVar(&doctorRedact, "redact", false,
		"hide your home directory and user name in paths")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose settings and save folder problems",
	Long: `Run diagnostic checks on the settings file, the saves folder, the
executables and the system.

Checks include whether save00 exists, whether a restore snapshot was left
behind, whether Noita is running, and whether there is room for another
backup.

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  nsm doctor
  nsm doctor --json --redact
  nsm doctor --fix`,
	Args: cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if doctorJSON && doctorVerbose {
			return errors.New("flags --json and --all are mutually exclusive")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		runner := doctor.NewRunner(doctor.Default(settingsPath(), current)...)
		return runDoctorWithWriter(cmd.Context(), cmd.OutOrStdout(), runner)
	},
}

func runDoctorWithWriter(ctx context.Context, w io.Writer, runner *doctor.Runner) error {
	report := runner.Run(ctx)

	if doctorFix {
		for _, fr := range runner.FixAll() {
			mark := "fixed"
			if !fr.Fixed {
				mark = "not fixed"
			}
			fmt.Fprintf(w, "%s: %s (%s)\n", mark, fr.Description, fr.Path)
		}
	}

	if doctorRedact {
		report.Redact(paths.Home())
	}

	var err error
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	} else {
		outputDoctorText(w, report)
	}
	if err != nil {
		return errors.Wrap(err, "encoding JSON")
	}

	switch {
	case report.HasErrors():
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	case report.HasWarnings():
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) {
	hasOutput := false
	for _, result := range report.Results {
		if !doctorVerbose && !result.Problem() {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(w, result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && result.Problem() {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}
	if report.Interrupted {
		fmt.Fprintln(w, "Interrupted: not every check ran.")
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(w io.Writer, s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return colorFor(w, colorOK).Sprint("✓")
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return colorFor(w, colorWarn).Sprint("⚠")
	case doctor.SeverityError:
		return colorFor(w, colorErr).Sprint("✗")
	default:
		return "?"
	}
}

var (
	errDoctorWarnings = errors.New("doctor found warnings")
	errDoctorErrors   = errors.New("doctor found errors")
)
