package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dagster-io/erk-sub014/internal/config"
	"github.com/dagster-io/erk-sub014/internal/constants"
	"github.com/dagster-io/erk-sub014/internal/events"
	"github.com/dagster-io/erk-sub014/internal/git"
	"github.com/dagster-io/erk-sub014/internal/graphite"
	"github.com/dagster-io/erk-sub014/internal/lock"
	"github.com/dagster-io/erk-sub014/internal/pool"
	"github.com/dagster-io/erk-sub014/internal/style"
	"github.com/dagster-io/erk-sub014/internal/ui"
	"github.com/dagster-io/erk-sub014/internal/workspace"
)

// allocateOptions parameterizes the shared allocate-and-bind flow. The
// branch/slot/pooled command families all dispatch here; only their
// defaults and suggestion strings differ.
type allocateOptions struct {
	branch string
	mode   pool.Mode
	force  bool

	// allowEvict enables the eviction flow on a full pool. The legacy
	// `pool assign` variant disables it and just fails.
	allowEvict bool

	// existsHint and missingHint name the sibling command to suggest
	// when the branch precondition fails.
	existsHint  string
	missingHint string
}

// poolContext bundles everything a pool command needs for one invocation.
type poolContext struct {
	repoRoot  string
	cfg       *config.Config
	statePath string
	binder    *pool.Binder
}

// repoGit adapts *git.Git to the pool.GitGateway interface.
type repoGit struct {
	g *git.Git
}

func (r repoGit) BranchExists(branch string) (bool, error) {
	return r.g.BranchExists(branch)
}

func (r repoGit) CreateBranch(branch, start string) error {
	return r.g.CreateBranch(branch, start)
}

func (r repoGit) DetectTrunkBranch() (string, error) {
	return r.g.DetectTrunkBranch()
}

func (r repoGit) WorktreeAdd(path, branch string) error {
	return r.g.WorktreeAdd(path, branch)
}

func (r repoGit) CheckoutIn(dir, branch string) error {
	return git.NewGit(dir).Checkout(branch)
}

// graphiteTracker adapts the graphite package to pool.Tracker.
type graphiteTracker struct{}

func (graphiteTracker) TrackBranch(repoRoot, branch, trunk string) error {
	return graphite.TrackBranch(repoRoot, branch, trunk)
}

// loadPoolContext locates the repository and builds the binder.
func loadPoolContext() (*poolContext, error) {
	repoRoot, err := workspace.FindFromCwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadForRepo(repoRoot)
	if err != nil {
		return nil, err
	}

	binder := &pool.Binder{
		RepoRoot:     repoRoot,
		WorktreesDir: cfg.ResolveWorktreesDir(repoRoot),
		Git:          repoGit{g: git.NewGit(repoRoot)},
	}
	if cfg.Graphite.Enabled && graphite.IsAvailable() {
		binder.Tracker = graphiteTracker{}
	}

	return &poolContext{
		repoRoot:  repoRoot,
		cfg:       cfg,
		statePath: constants.PoolStatePath(repoRoot),
		binder:    binder,
	}, nil
}

// loadState loads the pool state, creating a fresh one on first use.
func (pc *poolContext) loadState() (*pool.PoolState, error) {
	state, err := pool.Load(pc.statePath)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = pool.New(pc.cfg.PoolSize)
	}
	return state, nil
}

// runAllocate is the single allocate-and-bind path shared by all command
// families: load state, validate preconditions, free capacity if needed,
// create/verify the branch, bind it to a slot, persist.
func runAllocate(opts allocateOptions) error {
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

	// Precondition: branch must not already occupy a slot. Checked before
	// anything mutates so re-invocation is a clean error.
	if existing := state.FindBranchAssignment(opts.branch); existing != nil {
		return fmt.Errorf("branch '%s' is already assigned to %s (worktree: %s)",
			opts.branch, existing.SlotName, existing.WorktreePath)
	}

	// Branch preconditions are read-only, so they run before eviction:
	// a create of an existing branch (or assign of a missing one) must
	// fail with the pool exactly as it was, never one assignment short.
	if err := pc.binder.CheckBranch(opts.branch, opts.mode); err != nil {
		return decorateBranchError(err, opts)
	}

	// Free a slot before touching branches so a full pool aborts with
	// nothing created.
	state, err = ensureCapacity(pc, state, opts)
	if err != nil {
		return err
	}

	prep, err := pc.binder.PrepareBranch(opts.branch, opts.mode)
	if err != nil {
		return decorateBranchError(err, opts)
	}
	if prep.Created {
		events.LogBestEffort(pc.repoRoot, events.TypeBranchCreated,
			events.BranchPayload(opts.branch, prep.Trunk))
		fmt.Printf("%s Created branch '%s' from %s\n", style.SuccessPrefix, opts.branch, prep.Trunk)
		if prep.TrackErr != nil {
			style.PrintWarning("could not register branch with Graphite: %v", prep.TrackErr)
		}
	}

	res, err := pc.binder.Bind(state, opts.branch)
	if err != nil {
		return err
	}

	if err := pool.Save(pc.statePath, res.State); err != nil {
		return err
	}
	events.LogBestEffort(pc.repoRoot, events.TypeSlotAssigned,
		events.AssignPayload(res.Assignment.SlotName, opts.branch, res.Assignment.WorktreePath))

	how := "new worktree"
	if res.Reused {
		how = "reused worktree"
	}
	fmt.Printf("%s Assigned '%s' to %s (%s)\n",
		style.SuccessPrefix, opts.branch, res.Assignment.SlotName, how)
	fmt.Printf("  cd %s\n", res.Assignment.WorktreePath)

	return nil
}

// ensureCapacity frees a slot when the pool is full, or fails. With
// --force the oldest assignment is evicted deterministically; on an
// interactive terminal the user confirms evicting that same candidate;
// otherwise the command aborts and pool.json stays untouched.
//
// A confirmed eviction is persisted before the new assignment proceeds,
// so a crash in between leaves the pool one assignment short but never
// duplicated or corrupted.
func ensureCapacity(pc *poolContext, state *pool.PoolState, opts allocateOptions) (*pool.PoolState, error) {
	if !state.IsFull() {
		return state, nil
	}

	if !opts.allowEvict {
		return nil, poolFullError(state)
	}

	victim := state.OldestAssignment()
	if victim == nil {
		// Full with no assignments means pool_size is zero.
		return nil, fmt.Errorf("pool size is %d; set pool_size in %s",
			state.PoolSize, constants.FileConfigTOML)
	}

	if !opts.force {
		if !ui.IsInteractive() {
			return nil, poolFullError(state)
		}
		if !confirmEviction(victim, state) {
			fmt.Println("Aborted.")
			return nil, NewSilentExit(1)
		}
	}

	next, removed, err := pc.binder.Evict(state, victim.BranchName)
	if err != nil {
		return nil, err
	}
	if err := pool.Save(pc.statePath, next); err != nil {
		return nil, err
	}
	events.LogBestEffort(pc.repoRoot, events.TypeSlotEvicted,
		events.EvictPayload(removed.SlotName, removed.BranchName, "pool full"))

	fmt.Printf("%s Evicted '%s' from %s\n", style.SuccessPrefix, removed.BranchName, removed.SlotName)
	return next, nil
}

// poolFullError builds the capacity-exhaustion error directing the user
// to the pool listing command.
func poolFullError(state *pool.PoolState) error {
	return fmt.Errorf("%w (%d/%d slots assigned) - run 'erk pool list' to see assignments, or re-run with --force to evict the oldest",
		pool.ErrPoolFull, len(state.Assignments), state.PoolSize)
}

// confirmEviction prompts the user to confirm evicting the oldest
// assignment. Only called when stdin is a TTY.
func confirmEviction(victim *pool.SlotAssignment, state *pool.PoolState) bool {
	fmt.Printf("Pool is full (%d/%d slots assigned).\n", len(state.Assignments), state.PoolSize)
	fmt.Printf("Oldest assignment: '%s' in %s (assigned %s)\n",
		victim.BranchName, victim.SlotName, victim.AssignedAt.Format(time.RFC3339))
	fmt.Print("Evict it to free a slot? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return parseYes(answer)
}

// parseYes interprets a y/N prompt answer.
func parseYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// decorateBranchError rewrites branch precondition failures with the
// sibling-command suggestion for the invoking command family.
func decorateBranchError(err error, opts allocateOptions) error {
	if errors.Is(err, pool.ErrBranchExists) && opts.existsHint != "" {
		return fmt.Errorf("branch '%s' already exists - %s", opts.branch, opts.existsHint)
	}
	if errors.Is(err, pool.ErrBranchMissing) && opts.missingHint != "" {
		return fmt.Errorf("branch '%s' does not exist - %s", opts.branch, opts.missingHint)
	}
	return err
}
