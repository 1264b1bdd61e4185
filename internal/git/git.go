// Package git wraps the git CLI for the operations erk needs.
//
// Every operation shells out to git with -C <dir> so callers never have to
// chdir. Errors carry git's stderr so failures surface verbatim.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoTrunk indicates the trunk branch could not be detected.
var ErrNoTrunk = errors.New("could not detect trunk branch")

// Git runs git commands in a fixed working directory.
type Git struct {
	dir string
}

// NewGit creates a Git runner for the given directory.
func NewGit(dir string) *Git {
	return &Git{dir: dir}
}

// WorkDir returns the directory this runner operates in.
func (g *Git) WorkDir() string {
	return g.dir
}

// run executes git with the given args and returns trimmed stdout.
func (g *Git) run(args ...string) (string, error) {
	full := append([]string{"-C", g.dir}, args...)
	cmd := exec.Command("git", full...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return strings.TrimSpace(string(out)), nil
}

// RepoRoot returns the top-level directory of the repository.
func (g *Git) RepoRoot() (string, error) {
	return g.run("rev-parse", "--show-toplevel")
}

// LocalBranches returns the names of all local branches.
func (g *Git) LocalBranches() ([]string, error) {
	out, err := g.run("for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// BranchExists reports whether a local branch exists.
func (g *Git) BranchExists(branch string) (bool, error) {
	branches, err := g.LocalBranches()
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == branch {
			return true, nil
		}
	}
	return false, nil
}

// CreateBranch creates a new branch at the given start point without
// checking it out.
func (g *Git) CreateBranch(branch, startPoint string) error {
	_, err := g.run("branch", branch, startPoint)
	return err
}

// Checkout switches the working directory to the given branch.
func (g *Git) Checkout(branch string) error {
	_, err := g.run("checkout", branch)
	return err
}

// WorktreeAdd creates a new worktree at path with the given branch
// checked out. The branch must already exist.
func (g *Git) WorktreeAdd(path, branch string) error {
	_, err := g.run("worktree", "add", path, branch)
	return err
}

// WorktreeRemove removes the worktree at path. With force, uncommitted
// changes are discarded.
func (g *Git) WorktreeRemove(path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := g.run(args...)
	return err
}

// WorktreePrune removes stale worktree administrative records.
func (g *Git) WorktreePrune() error {
	_, err := g.run("worktree", "prune")
	return err
}

// WorktreeList returns the paths of all registered worktrees, primary
// checkout first.
func (g *Git) WorktreeList() ([]string, error) {
	out, err := g.run("worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "worktree "); ok {
			paths = append(paths, rest)
		}
	}
	return paths, nil
}

// CurrentBranch returns the branch checked out in the working directory.
func (g *Git) CurrentBranch() (string, error) {
	return g.run("rev-parse", "--abbrev-ref", "HEAD")
}

// DetectTrunkBranch determines the repository's main integration branch.
// Prefers the remote HEAD (origin/HEAD), then falls back to a local
// main or master branch.
func (g *Git) DetectTrunkBranch() (string, error) {
	// origin/HEAD points at the remote's default branch when set.
	if out, err := g.run("symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		if name := strings.TrimPrefix(out, "refs/remotes/origin/"); name != out && name != "" {
			return name, nil
		}
	}

	for _, candidate := range []string{"main", "master"} {
		exists, err := g.BranchExists(candidate)
		if err != nil {
			return "", err
		}
		if exists {
			return candidate, nil
		}
	}

	return "", ErrNoTrunk
}

// IsAvailable reports whether the git binary is on PATH. Tests use this
// to skip in environments without git.
func IsAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}
