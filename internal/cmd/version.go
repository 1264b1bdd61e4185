package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the erk version, overridden at build time via
// -ldflags "-X github.com/dagster-io/erk-sub014/internal/cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:     "version",
	GroupID: GroupUtil,
	Short:   "Print the erk version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("erk %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
