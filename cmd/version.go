package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version   = "0.2.1"            // Application version
	goVersion = runtime.Version()  // Go version used to build the application
	platform  = runtime.GOOS + "/" + runtime.GOARCH
)

// versionCmd shows the version of the application and the Go runtime.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Atelier version:", version)
			cmd.Println("Go version:", goVersion)
			cmd.Println("Platform:", platform)
		},
	}
}
