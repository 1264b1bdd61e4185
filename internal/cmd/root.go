// Package cmd implements the erk CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dagster-io/erk-sub014/internal/style"
)

// Command group IDs for help output.
const (
	GroupPool = "pool"
	GroupUtil = "util"
)

var rootCmd = &cobra.Command{
	Use:   "erk",
	Short: "Developer workflow CLI for worktree-based development",
	Long: `erk orchestrates git worktrees across a multi-branch development
lifecycle using a fixed-size pool of reusable worktree slots.

Each branch you work on is assigned a slot (erk-managed-wt-NN) backed by
a git worktree. Slots are reused across branches: when a branch leaves a
slot, the worktree stays behind and the next branch checks out in place,
skipping the cost of a fresh 'git worktree add'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupPool, Title: "Pool Commands:"},
		&cobra.Group{ID: GroupUtil, Title: "Utility Commands:"},
	)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := IsSilentExit(err); ok {
			return code
		}
		style.PrintError("%v", err)
		return 1
	}
	return 0
}
