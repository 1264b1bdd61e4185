package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagster-io/erk-sub014/internal/constants"
	"github.com/dagster-io/erk-sub014/internal/git"
	"github.com/dagster-io/erk-sub014/internal/pool"
)

// setupRepo creates a git repository with an initial commit and chdirs
// into it for the duration of the test.
func setupRepo(t *testing.T) string {
	t.Helper()
	if !git.IsAvailable() {
		t.Skip("git not available")
	}

	repo := filepath.Join(t.TempDir(), "repo")
	if err := os.Mkdir(repo, 0755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}
	mustGit(t, repo, "init", "-b", "main")
	mustGit(t, repo, "config", "user.email", "test@example.com")
	mustGit(t, repo, "config", "user.name", "Test")
	if err := os.WriteFile(filepath.Join(repo, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	mustGit(t, repo, "add", ".")
	mustGit(t, repo, "commit", "-m", "initial")

	t.Chdir(repo)
	return repo
}

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func pooledCreateOpts(branch string, force bool) allocateOptions {
	return allocateOptions{
		branch:     branch,
		mode:       pool.ModeCreate,
		force:      force,
		allowEvict: true,
		existsHint: fmt.Sprintf("use 'erk pooled assign %s' instead", branch),
	}
}

func loadState(t *testing.T, repo string) *pool.PoolState {
	t.Helper()
	state, err := pool.Load(constants.PoolStatePath(repo))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return state
}

func TestAllocateCreateAssignsSequentialSlots(t *testing.T) {
	repo := setupRepo(t)

	if err := runAllocate(pooledCreateOpts("feature-a", false)); err != nil {
		t.Fatalf("create feature-a: %v", err)
	}
	if err := runAllocate(pooledCreateOpts("feature-b", false)); err != nil {
		t.Fatalf("create feature-b: %v", err)
	}

	state := loadState(t, repo)
	if len(state.Assignments) != 2 {
		t.Fatalf("assignment count = %d, want 2", len(state.Assignments))
	}
	if a := state.FindBranchAssignment("feature-a"); a == nil || a.SlotName != "erk-managed-wt-01" {
		t.Errorf("feature-a = %+v, want erk-managed-wt-01", a)
	}
	if a := state.FindBranchAssignment("feature-b"); a == nil || a.SlotName != "erk-managed-wt-02" {
		t.Errorf("feature-b = %+v, want erk-managed-wt-02", a)
	}

	// The worktrees really exist with the branches checked out.
	a := state.FindBranchAssignment("feature-a")
	branch, err := git.NewGit(a.WorktreePath).CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "feature-a" {
		t.Errorf("worktree branch = %q, want feature-a", branch)
	}
}

func TestAllocateCreateExistingBranchFails(t *testing.T) {
	repo := setupRepo(t)
	mustGit(t, repo, "branch", "existing-branch")

	err := runAllocate(pooledCreateOpts("existing-branch", false))
	if err == nil {
		t.Fatal("create succeeded for existing branch")
	}
	if !strings.Contains(err.Error(), "erk pooled assign") {
		t.Errorf("error %q does not suggest the assign sibling", err)
	}
	if state := loadState(t, repo); state != nil && len(state.Assignments) != 0 {
		t.Errorf("assignments written despite precondition failure: %+v", state)
	}
}

func TestAllocateAssignMissingBranchFails(t *testing.T) {
	setupRepo(t)

	err := runAllocate(allocateOptions{
		branch:      "missing-branch",
		mode:        pool.ModeAssign,
		allowEvict:  true,
		missingHint: "use 'erk slot create missing-branch' instead",
	})
	if err == nil {
		t.Fatal("assign succeeded for missing branch")
	}
	if !strings.Contains(err.Error(), "erk slot create") {
		t.Errorf("error %q does not suggest the create sibling", err)
	}
}

func TestAllocateReassignIsError(t *testing.T) {
	repo := setupRepo(t)
	mustGit(t, repo, "branch", "feature-a")

	assign := allocateOptions{
		branch:      "feature-a",
		mode:        pool.ModeAssign,
		allowEvict:  true,
		missingHint: "use 'erk slot create feature-a' instead",
	}
	if err := runAllocate(assign); err != nil {
		t.Fatalf("assign: %v", err)
	}

	err := runAllocate(assign)
	if err == nil {
		t.Fatal("second assign succeeded, want already-assigned error")
	}
	if !strings.Contains(err.Error(), "already assigned") {
		t.Errorf("error = %q, want already-assigned message", err)
	}
	if state := loadState(t, repo); len(state.Assignments) != 1 {
		t.Errorf("assignment count = %d, want 1 (no duplicate)", len(state.Assignments))
	}
}

func TestAllocatePoolFullNonInteractive(t *testing.T) {
	repo := setupRepo(t)

	for _, b := range []string{"b1", "b2", "b3", "b4"} {
		if err := runAllocate(pooledCreateOpts(b, false)); err != nil {
			t.Fatalf("create %s: %v", b, err)
		}
	}
	before, err := os.ReadFile(constants.PoolStatePath(repo))
	if err != nil {
		t.Fatalf("read state: %v", err)
	}

	// Test stdin is not a TTY, so without --force this must fail.
	err = runAllocate(pooledCreateOpts("b5", false))
	if !errors.Is(err, pool.ErrPoolFull) {
		t.Fatalf("err = %v, want ErrPoolFull", err)
	}
	if !strings.Contains(err.Error(), "erk pool list") {
		t.Errorf("error %q does not direct to 'erk pool list'", err)
	}

	after, err := os.ReadFile(constants.PoolStatePath(repo))
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if string(before) != string(after) {
		t.Error("pool.json changed by failed allocation")
	}
}

func TestAllocateForceEvictsOldest(t *testing.T) {
	repo := setupRepo(t)

	for _, b := range []string{"b1", "b2", "b3", "b4"} {
		if err := runAllocate(pooledCreateOpts(b, false)); err != nil {
			t.Fatalf("create %s: %v", b, err)
		}
	}

	// b1 was assigned first, so --force evicts it.
	if err := runAllocate(pooledCreateOpts("b5", true)); err != nil {
		t.Fatalf("forced create: %v", err)
	}

	state := loadState(t, repo)
	if len(state.Assignments) != 4 {
		t.Fatalf("assignment count = %d, want 4", len(state.Assignments))
	}
	if state.FindBranchAssignment("b1") != nil {
		t.Error("oldest assignment b1 survived forced eviction")
	}
	a := state.FindBranchAssignment("b5")
	if a == nil {
		t.Fatal("b5 not assigned")
	}
	if a.SlotName != "erk-managed-wt-01" {
		t.Errorf("b5 slot = %q, want freed erk-managed-wt-01", a.SlotName)
	}

	// The freed slot's worktree was reused via checkout.
	branch, err := git.NewGit(a.WorktreePath).CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "b5" {
		t.Errorf("worktree branch = %q, want b5", branch)
	}
}

func TestAllocateForceCreateExistingBranchLeavesPoolIntact(t *testing.T) {
	repo := setupRepo(t)

	for _, b := range []string{"b1", "b2", "b3", "b4"} {
		if err := runAllocate(pooledCreateOpts(b, false)); err != nil {
			t.Fatalf("create %s: %v", b, err)
		}
	}
	mustGit(t, repo, "branch", "existing-branch")
	before, err := os.ReadFile(constants.PoolStatePath(repo))
	if err != nil {
		t.Fatalf("read state: %v", err)
	}

	// The create is doomed by the branch precondition, so even with
	// --force on a full pool nothing may be evicted.
	err = runAllocate(pooledCreateOpts("existing-branch", true))
	if err == nil {
		t.Fatal("forced create succeeded for existing branch")
	}
	if !strings.Contains(err.Error(), "erk pooled assign") {
		t.Errorf("error %q does not suggest the assign sibling", err)
	}

	after, err := os.ReadFile(constants.PoolStatePath(repo))
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if string(before) != string(after) {
		t.Error("pool.json changed by failed forced allocation")
	}
	state := loadState(t, repo)
	if len(state.Assignments) != 4 {
		t.Fatalf("assignment count = %d, want 4", len(state.Assignments))
	}
	if state.FindBranchAssignment("b1") == nil {
		t.Error("oldest assignment b1 evicted despite precondition failure")
	}
}

func TestPoolAssignVariantFailsWhenFull(t *testing.T) {
	repo := setupRepo(t)

	for _, b := range []string{"b1", "b2", "b3", "b4"} {
		if err := runAllocate(pooledCreateOpts(b, false)); err != nil {
			t.Fatalf("create %s: %v", b, err)
		}
	}
	mustGit(t, repo, "branch", "b5")

	// The legacy pool assign variant never evicts, even with force.
	err := runAllocate(allocateOptions{
		branch:     "b5",
		mode:       pool.ModeAssign,
		force:      true,
		allowEvict: false,
	})
	if !errors.Is(err, pool.ErrPoolFull) {
		t.Errorf("err = %v, want ErrPoolFull", err)
	}
}

func TestUnassignThenReuseKeepsWorktree(t *testing.T) {
	repo := setupRepo(t)

	if err := runAllocate(pooledCreateOpts("feature-a", false)); err != nil {
		t.Fatalf("create: %v", err)
	}
	state := loadState(t, repo)
	wtPath := state.FindBranchAssignment("feature-a").WorktreePath

	next, removed, err := state.WithoutBranch("feature-a")
	if err != nil {
		t.Fatalf("WithoutBranch: %v", err)
	}
	if err := pool.Save(constants.PoolStatePath(repo), next); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(removed.WorktreePath); err != nil {
		t.Fatalf("worktree removed on unassign: %v", err)
	}

	// The next branch lands in the same slot, reusing the worktree.
	if err := runAllocate(pooledCreateOpts("feature-b", false)); err != nil {
		t.Fatalf("create feature-b: %v", err)
	}
	state = loadState(t, repo)
	a := state.FindBranchAssignment("feature-b")
	if a == nil || a.WorktreePath != wtPath {
		t.Errorf("feature-b = %+v, want reuse of %s", a, wtPath)
	}
}
