// Package cmd holds build metadata injected with -ldflags "-X".
package cmd

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info renders the build metadata for `nsm version`.
func Info() string {
	return fmt.Sprintf("nsm version %s\n  commit: %s\n  built:  %s\n  go:     %s %s/%s\n",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
