package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagster-io/erk-sub014/internal/pool"
)

var (
	pooledCreateForce bool
	pooledAssignForce bool
)

var pooledCmd = &cobra.Command{
	Use:     "pooled",
	GroupID: GroupPool,
	Short:   "Create or assign branches in pooled worktrees",
}

var pooledCreateCmd = &cobra.Command{
	Use:   "create <branch>",
	Short: "Create a new branch in a pooled worktree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := args[0]
		return runAllocate(allocateOptions{
			branch:     branch,
			mode:       pool.ModeCreate,
			force:      pooledCreateForce,
			allowEvict: true,
			existsHint: fmt.Sprintf("use 'erk pooled assign %s' instead", branch),
		})
	},
}

var pooledAssignCmd = &cobra.Command{
	Use:   "assign <branch>",
	Short: "Assign an existing branch to a pooled worktree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := args[0]
		return runAllocate(allocateOptions{
			branch:      branch,
			mode:        pool.ModeAssign,
			force:       pooledAssignForce,
			allowEvict:  true,
			missingHint: fmt.Sprintf("use 'erk pooled create %s' instead", branch),
		})
	},
}

func init() {
	pooledCreateCmd.Flags().BoolVarP(&pooledCreateForce, "force", "f", false, "Evict the oldest assignment if the pool is full")
	pooledAssignCmd.Flags().BoolVarP(&pooledAssignForce, "force", "f", false, "Evict the oldest assignment if the pool is full")
	pooledCmd.AddCommand(pooledCreateCmd)
	pooledCmd.AddCommand(pooledAssignCmd)
	rootCmd.AddCommand(pooledCmd)
}
