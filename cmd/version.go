package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion sets the build information reported by the version and update commands
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

var versionCmd = &cobra.Command{
	Use:                "version",
	Short:              "Print version information",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "meetbot %s (built %s, %s %s/%s)\n",
			version, buildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
