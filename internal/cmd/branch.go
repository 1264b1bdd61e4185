package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagster-io/erk-sub014/internal/events"
	"github.com/dagster-io/erk-sub014/internal/pool"
	"github.com/dagster-io/erk-sub014/internal/style"
)

var (
	branchCreateNoSlot bool
	branchCreateForce  bool
)

var branchCmd = &cobra.Command{
	Use:     "branch",
	GroupID: GroupPool,
	Short:   "Manage branches and their worktree slots",
}

var branchCreateCmd = &cobra.Command{
	Use:   "create <branch>",
	Short: "Create a new branch and assign it a worktree slot",
	Long: `Create a new branch from the trunk branch and assign it a slot in
the worktree pool.

The branch must not exist yet; to put an existing branch in a slot, use
'erk slot assign' instead. With --no-slot only the branch is created and
the pool is left untouched.

When the pool is full, the oldest assignment is evicted: --force evicts
without asking, an interactive terminal asks for confirmation, and a
non-interactive run fails.

Examples:
  erk branch create feature-x           # branch + slot
  erk branch create feature-x --no-slot # branch only
  erk branch create feature-x --force   # evict oldest if pool is full`,
	Args: cobra.ExactArgs(1),
	RunE: runBranchCreate,
}

func init() {
	branchCreateCmd.Flags().BoolVar(&branchCreateNoSlot, "no-slot", false, "Create the branch without a slot assignment")
	branchCreateCmd.Flags().BoolVarP(&branchCreateForce, "force", "f", false, "Evict the oldest assignment if the pool is full")
	branchCmd.AddCommand(branchCreateCmd)
	rootCmd.AddCommand(branchCmd)
}

func runBranchCreate(cmd *cobra.Command, args []string) error {
	branch := args[0]

	if branchCreateNoSlot {
		return runBranchCreateNoSlot(branch)
	}

	return runAllocate(allocateOptions{
		branch:     branch,
		mode:       pool.ModeCreate,
		force:      branchCreateForce,
		allowEvict: true,
		existsHint: fmt.Sprintf("use 'erk slot assign %s' to put the existing branch in a slot", branch),
	})
}

// runBranchCreateNoSlot creates the branch without touching the pool.
func runBranchCreateNoSlot(branch string) error {
	pc, err := loadPoolContext()
	if err != nil {
		return err
	}

	prep, err := pc.binder.PrepareBranch(branch, pool.ModeCreate)
	if err != nil {
		return decorateBranchError(err, allocateOptions{
			branch:     branch,
			existsHint: fmt.Sprintf("use 'erk slot assign %s' to put the existing branch in a slot", branch),
		})
	}

	events.LogBestEffort(pc.repoRoot, events.TypeBranchCreated,
		events.BranchPayload(branch, prep.Trunk))
	fmt.Printf("%s Created branch '%s' from %s (no slot assigned)\n",
		style.SuccessPrefix, branch, prep.Trunk)
	if prep.TrackErr != nil {
		style.PrintWarning("could not register branch with Graphite: %v", prep.TrackErr)
	}
	return nil
}
