package pool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dagster-io/erk-sub014/internal/constants"
)

// Mode selects the branch precondition for an allocation.
type Mode int

const (
	// ModeCreate requires the branch to NOT exist; it is created from trunk.
	ModeCreate Mode = iota
	// ModeAssign requires the branch to already exist locally.
	ModeAssign
)

// String returns the command-facing name of the mode.
func (m Mode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "assign"
}

// GitGateway is the narrow git surface the binder needs. Satisfied by
// *git.Git via the adapter in internal/cmd; tests supply a fake.
type GitGateway interface {
	BranchExists(branch string) (bool, error)
	CreateBranch(branch, startPoint string) error
	DetectTrunkBranch() (string, error)
	WorktreeAdd(path, branch string) error
	CheckoutIn(dir, branch string) error
}

// Tracker registers branches with an external branch-tracking tool.
type Tracker interface {
	TrackBranch(repoRoot, branch, trunk string) error
}

// Binder turns allocation decisions into filesystem and git reality.
// It is the only part of the pool core that performs I/O.
type Binder struct {
	RepoRoot     string
	WorktreesDir string
	Git          GitGateway
	Tracker      Tracker // nil disables branch tracking
}

// PrepareResult reports what PrepareBranch did.
type PrepareResult struct {
	Created  bool
	Trunk    string
	TrackErr error // non-fatal tracking failure, surfaced as a warning
}

// CheckBranch validates the branch precondition for the mode without
// mutating anything: create requires the branch to be absent, assign
// requires it to exist. Callers run this before freeing capacity so a
// doomed allocation never evicts an assignment.
func (b *Binder) CheckBranch(branch string, mode Mode) error {
	exists, err := b.Git.BranchExists(branch)
	if err != nil {
		return err
	}
	if mode == ModeCreate && exists {
		return fmt.Errorf("%w: %s", ErrBranchExists, branch)
	}
	if mode == ModeAssign && !exists {
		return fmt.Errorf("%w: %s", ErrBranchMissing, branch)
	}
	return nil
}

// PrepareBranch validates the branch precondition for the mode and, in
// create mode, creates the branch from the auto-detected trunk.
func (b *Binder) PrepareBranch(branch string, mode Mode) (*PrepareResult, error) {
	if err := b.CheckBranch(branch, mode); err != nil {
		return nil, err
	}
	if mode == ModeAssign {
		return &PrepareResult{}, nil
	}

	trunk, err := b.Git.DetectTrunkBranch()
	if err != nil {
		return nil, fmt.Errorf("detecting trunk branch: %w", err)
	}
	if err := b.Git.CreateBranch(branch, trunk); err != nil {
		return nil, fmt.Errorf("creating branch %s: %w", branch, err)
	}

	result := &PrepareResult{Created: true, Trunk: trunk}
	if b.Tracker != nil {
		result.TrackErr = b.Tracker.TrackBranch(b.RepoRoot, branch, trunk)
	}
	return result, nil
}

// BindResult reports how a branch was bound to its slot.
type BindResult struct {
	State      *PoolState
	Assignment SlotAssignment
	Reused     bool // existing worktree reused via checkout (fast path)
}

// Bind assigns branch to a slot and materializes the worktree.
//
// Slot choice: an inactive provisioned slot if one exists (fast path),
// otherwise the lowest available slot number. Materialization: a slot
// whose worktree directory exists gets its per-session artifacts reset
// and the branch checked out in place; an empty slot gets a fresh
// `git worktree add`. Returns ErrPoolFull when no slot is available.
//
// The returned state is a new value; the caller persists it.
func (b *Binder) Bind(state *PoolState, branch string) (*BindResult, error) {
	if existing := state.FindBranchAssignment(branch); existing != nil {
		return nil, fmt.Errorf("%w: %s is in %s", ErrBranchAssigned, branch, existing.SlotName)
	}

	slotName, worktreePath, err := b.chooseSlot(state)
	if err != nil {
		return nil, err
	}

	reused, err := b.materialize(worktreePath, branch)
	if err != nil {
		return nil, err
	}

	assignment := SlotAssignment{
		SlotName:     slotName,
		BranchName:   branch,
		AssignedAt:   time.Now().UTC().Truncate(time.Second),
		WorktreePath: worktreePath,
	}

	next := state.WithSlot(SlotDescriptor{Name: slotName, WorktreePath: worktreePath})
	next, err = next.WithAssignment(assignment)
	if err != nil {
		return nil, err
	}

	return &BindResult{State: next, Assignment: assignment, Reused: reused}, nil
}

// Evict returns a new state with the given assignment removed. The
// worktree directory is left in place for reuse by the next occupant.
func (b *Binder) Evict(state *PoolState, branch string) (*PoolState, *SlotAssignment, error) {
	return state.WithoutBranch(branch)
}

// chooseSlot picks the target slot for a new assignment.
func (b *Binder) chooseSlot(state *PoolState) (name, path string, err error) {
	if d := state.FindInactiveSlot(); d != nil {
		return d.Name, d.WorktreePath, nil
	}

	n, ok := state.FindNextAvailableSlot()
	if !ok {
		return "", "", fmt.Errorf("%w (%d/%d slots assigned)",
			ErrPoolFull, len(state.Assignments), state.PoolSize)
	}
	name = SlotName(n)
	return name, filepath.Join(b.WorktreesDir, name), nil
}

// materialize makes worktreePath hold a checkout of branch. Reports
// whether an existing worktree was reused.
func (b *Binder) materialize(worktreePath, branch string) (reused bool, err error) {
	info, statErr := os.Stat(worktreePath)
	if statErr == nil && info.IsDir() {
		// Fast path: reuse the existing worktree. Stale per-session
		// artifacts from the previous occupant are always purged before
		// the branch switch so no state leaks across branches.
		if err := resetWorktreeArtifacts(worktreePath); err != nil {
			return false, err
		}
		if err := b.Git.CheckoutIn(worktreePath, branch); err != nil {
			return false, fmt.Errorf("checking out %s in %s: %w", branch, worktreePath, err)
		}
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(worktreePath), 0755); err != nil {
		return false, fmt.Errorf("creating worktrees directory: %w", err)
	}
	if err := b.Git.WorktreeAdd(worktreePath, branch); err != nil {
		return false, fmt.Errorf("adding worktree at %s: %w", worktreePath, err)
	}
	return false, nil
}

// resetWorktreeArtifacts removes per-session scratch state left behind by
// a previous occupant of the worktree. Called on every reuse path.
func resetWorktreeArtifacts(worktreePath string) error {
	scratch := filepath.Join(worktreePath, constants.DirErk, constants.DirScratch)
	if err := os.RemoveAll(scratch); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing scratch state: %w", err)
	}
	return nil
}
