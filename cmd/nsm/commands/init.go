package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/nsm/internal/config"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/paths"
	"github.com/thoreinstein/nsm/internal/settings"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and settings file",
	Long: `Write config.yaml to the nsm config directory and a settings file with
default values. Existing files are left alone.`,
	Example: `  nsm init
  nsm init --settings ./variables.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInitWithWriter(cmd.OutOrStdout(),
			filepath.Join(paths.ConfigDir(), "config.yaml"), settingsPath(), current)
	},
}

func runInitWithWriter(w io.Writer, configPath, settingsFile string, s *settings.Settings) error {
	switch err := config.WriteDefault(configPath); {
	case err == nil:
		fmt.Fprintf(w, "Wrote %s\n", configPath)
	case errors.Is(err, errors.ErrAlreadyExists):
		fmt.Fprintf(w, "Config exists: %s\n", configPath)
	default:
		return err
	}

	if _, err := settings.Load(settingsFile); !errors.Is(err, errors.ErrPathNotFound) {
		fmt.Fprintf(w, "Settings exist: %s\n", settingsFile)
		return nil
	}
	if err := s.Save(settingsFile); err != nil {
		return errors.Wrap(err, "writing settings")
	}
	fmt.Fprintf(w, "Wrote %s\n", settingsFile)

	for _, verr := range s.Validate() {
		fmt.Fprintf(w, "  warning: %v\n", verr)
	}
	return nil
}
