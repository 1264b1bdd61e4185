package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dagster-io/erk-sub014/internal/pool"
	"github.com/dagster-io/erk-sub014/internal/style"
)

var poolCmd = &cobra.Command{
	Use:     "pool",
	GroupID: GroupPool,
	Short:   "Inspect and manage the worktree pool",
}

var poolAssignCmd = &cobra.Command{
	Use:   "assign <branch>",
	Short: "Assign an existing branch to a slot (fails when full)",
	Long: `Assign an existing branch to a worktree slot.

This is the simple variant without an eviction flow: when the pool is
full it fails. Use 'erk slot assign --force' to evict the oldest
assignment instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch := args[0]
		return runAllocate(allocateOptions{
			branch:      branch,
			mode:        pool.ModeAssign,
			allowEvict:  false,
			missingHint: fmt.Sprintf("use 'erk slot create %s' to create it", branch),
		})
	},
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pool slots and their assignments",
	RunE:  runPoolList,
}

func init() {
	poolCmd.AddCommand(poolAssignCmd)
	poolCmd.AddCommand(poolListCmd)
	rootCmd.AddCommand(poolCmd)
}

func runPoolList(cmd *cobra.Command, args []string) error {
	pc, err := loadPoolContext()
	if err != nil {
		return err
	}

	state, err := pc.loadState()
	if err != nil {
		return err
	}

	fmt.Printf("Worktree pool: %d/%d slots assigned\n\n",
		len(state.Assignments), state.PoolSize)

	if len(state.Assignments) == 0 && len(state.Slots) == 0 {
		fmt.Println("  (empty)")
		fmt.Println()
		fmt.Println("Assign a branch with: erk slot assign <branch>")
		return nil
	}

	table := style.NewTable(
		style.Column{Name: "SLOT", Width: 20},
		style.Column{Name: "BRANCH", Width: 28},
		style.Column{Name: "ASSIGNED", Width: 20},
		style.Column{Name: "WORKTREE", Width: 40},
	)

	for n := 1; n <= state.PoolSize; n++ {
		name := pool.SlotName(n)
		if a := state.FindSlotAssignment(name); a != nil {
			table.AddRow(name, a.BranchName, a.AssignedAt.Format(time.RFC3339), a.WorktreePath)
			continue
		}
		if d := state.FindSlot(name); d != nil {
			table.AddRow(name, style.Dim.Render("(free)"), "", d.WorktreePath)
			continue
		}
		table.AddRow(name, style.Dim.Render("(unprovisioned)"), "", "")
	}

	fmt.Print(table.Render())
	return nil
}
