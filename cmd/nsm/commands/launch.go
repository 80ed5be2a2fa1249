package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/launcher"
	"github.com/thoreinstein/nsm/internal/logging"
	"github.com/thoreinstein/nsm/internal/settings"
)

func init() {
	launchCmd.AddCommand(launchGameCmd, launchProxyCmd)
	rootCmd.AddCommand(launchCmd)
}

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Start Noita or the multiplayer proxy",
	Long: `Start an executable from settings and wait for it to exit.

Extra arguments after "--" are passed through. The process inherits the
terminal and runs from the directory containing the executable.`,
	Example: `  nsm launch game
  nsm launch proxy -- --port 5000`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var launchGameCmd = &cobra.Command{
	Use:   "game [-- args...]",
	Short: "Start Noita (" + settings.KeyGameExe + ")",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLaunchWithWriter(cmd.Context(), cmd.OutOrStdout(), newLauncher(cmd), "Noita", current.GameExe, args)
	},
}

var launchProxyCmd = &cobra.Command{
	Use:   "proxy [-- args...]",
	Short: "Start the Noita MP proxy (" + settings.KeyProxyExe + ")",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLaunchWithWriter(cmd.Context(), cmd.OutOrStdout(), newLauncher(cmd), "Noita MP Proxy", current.ProxyExe, args)
	},
}

func newLauncher(cmd *cobra.Command) *launcher.Launcher {
	l := launcher.New(logging.FromContext(cmd.Context()))
	l.Stdout = cmd.OutOrStdout()
	l.Stderr = cmd.ErrOrStderr()
	return l
}

type runner interface {
	Run(ctx context.Context, path string, args ...string) (launcher.Result, error)
}

func runLaunchWithWriter(ctx context.Context, w io.Writer, r runner, what, path string, args []string) error {
	fmt.Fprintf(w, "Launching %s...\n", what)
	res, err := r.Run(ctx, path, args...)
	if err != nil {
		return errors.Wrapf(err, "launching %s", what)
	}
	if !res.Success() {
		return errors.NewExitError(
			errors.Newf("command failed with return code %d: %s", res.ExitCode, path), errors.ExitSystem)
	}
	fmt.Fprintf(w, "%s exited after %s.\n", what, res.Duration.Round(time.Second))
	return nil
}
