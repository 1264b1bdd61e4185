package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagster-io/erk-sub014/internal/events"
	"github.com/dagster-io/erk-sub014/internal/lock"
	"github.com/dagster-io/erk-sub014/internal/pool"
	"github.com/dagster-io/erk-sub014/internal/style"
)

var (
	slotCreateForce bool
	slotAssignForce bool
)

var slotCmd = &cobra.Command{
	Use:     "slot",
	GroupID: GroupPool,
	Short:   "Manage worktree slot assignments",
}

var slotCreateCmd = &cobra.Command{
	Use:   "create <branch>",
	Short: "Create a new branch and assign it a slot",
	Long: `Create a new branch from trunk and assign it a worktree slot.

The branch must not exist yet; for an existing branch use
'erk slot assign'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := args[0]
		return runAllocate(allocateOptions{
			branch:     branch,
			mode:       pool.ModeCreate,
			force:      slotCreateForce,
			allowEvict: true,
			existsHint: fmt.Sprintf("use 'erk slot assign %s' instead", branch),
		})
	},
}

var slotAssignCmd = &cobra.Command{
	Use:   "assign <branch>",
	Short: "Assign an existing branch to a slot",
	Long: `Assign an existing local branch to a worktree slot.

The branch must already exist; to create a new branch use
'erk slot create'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := args[0]
		return runAllocate(allocateOptions{
			branch:      branch,
			mode:        pool.ModeAssign,
			force:       slotAssignForce,
			allowEvict:  true,
			missingHint: fmt.Sprintf("use 'erk slot create %s' instead", branch),
		})
	},
}

var slotUnassignCmd = &cobra.Command{
	Use:   "unassign <branch>",
	Short: "Release a branch's slot back to the pool",
	Long: `Remove a branch's slot assignment.

The worktree directory is left in place so the next branch assigned to
the slot can reuse it with a plain checkout.`,
	Args: cobra.ExactArgs(1),
	RunE: runSlotUnassign,
}

func init() {
	slotCreateCmd.Flags().BoolVarP(&slotCreateForce, "force", "f", false, "Evict the oldest assignment if the pool is full")
	slotAssignCmd.Flags().BoolVarP(&slotAssignForce, "force", "f", false, "Evict the oldest assignment if the pool is full")
	slotCmd.AddCommand(slotCreateCmd)
	slotCmd.AddCommand(slotAssignCmd)
	slotCmd.AddCommand(slotUnassignCmd)
	rootCmd.AddCommand(slotCmd)
}

func runSlotUnassign(cmd *cobra.Command, args []string) error {
	branch := args[0]

	pc, err := loadPoolContext()
	if err != nil {
		return err
	}

	l, err := lock.Acquire(pc.statePath)
	if err != nil {
		return err
	}
	defer l.Release()

	state, err := pc.loadState()
	if err != nil {
		return err
	}

	next, removed, err := state.WithoutBranch(branch)
	if err != nil {
		return err
	}
	if err := pool.Save(pc.statePath, next); err != nil {
		return err
	}
	events.LogBestEffort(pc.repoRoot, events.TypeSlotReleased,
		events.AssignPayload(removed.SlotName, removed.BranchName, removed.WorktreePath))

	fmt.Printf("%s Released %s (was '%s')\n", style.SuccessPrefix, removed.SlotName, removed.BranchName)
	fmt.Printf("  worktree kept for reuse: %s\n", removed.WorktreePath)
	return nil
}
