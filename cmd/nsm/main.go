// Package main is the entry point for the nsm CLI.
package main

import (
	"os"

	"github.com/thoreinstein/nsm/cmd/nsm/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.Report(os.Stderr, err))
	}
}
