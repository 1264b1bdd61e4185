// Package constants defines shared constant values used throughout erk.
// Centralizing these magic strings keeps the command families consistent.
package constants

import (
	"fmt"
	"path/filepath"
)

// Pool sizing.
const (
	// DefaultPoolSize is the slot capacity used when config does not
	// specify one.
	DefaultPoolSize = 4

	// SlotNamePrefix is the prefix for managed worktree slot names.
	// Slots are named erk-managed-wt-01 .. erk-managed-wt-NN.
	SlotNamePrefix = "erk-managed-wt-"
)

// Directory and file names within a repository.
const (
	// DirErk is the repository-local metadata directory.
	DirErk = ".erk"

	// DirWorktrees is the suffix for the default managed-worktrees
	// directory, created as a sibling of the repository root.
	DirWorktrees = "worktrees"

	// DirScratch is the per-session scratch directory inside a worktree.
	// It is purged whenever a slot is handed to a new branch.
	DirScratch = "scratch"

	// FilePoolJSON is the pool state file in .erk/.
	FilePoolJSON = "pool.json"

	// FileConfigTOML is the repository config file in .erk/.
	FileConfigTOML = "config.toml"

	// FileEventsJSONL is the append-only audit log in .erk/.
	FileEventsJSONL = "events.jsonl"
)

// SlotName returns the deterministic name for slot number n.
// Numbers are zero-padded to two digits: SlotName(3) == "erk-managed-wt-03".
func SlotName(n int) string {
	return fmt.Sprintf("%s%02d", SlotNamePrefix, n)
}

// Path helpers construct common paths.

// ErkDir returns the path to .erk/ within a repository root.
func ErkDir(repoRoot string) string {
	return filepath.Join(repoRoot, DirErk)
}

// PoolStatePath returns the path to pool.json within a repository root.
func PoolStatePath(repoRoot string) string {
	return filepath.Join(repoRoot, DirErk, FilePoolJSON)
}

// ConfigPath returns the path to config.toml within a repository root.
func ConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, DirErk, FileConfigTOML)
}

// EventsPath returns the path to events.jsonl within a repository root.
func EventsPath(repoRoot string) string {
	return filepath.Join(repoRoot, DirErk, FileEventsJSONL)
}

// WorktreesDir returns the default managed-worktrees directory for a
// repository root: a "<repo>-worktrees" sibling of the root. Keeping
// worktrees outside the repository keeps git status clean.
func WorktreesDir(repoRoot string) string {
	return filepath.Join(filepath.Dir(repoRoot), filepath.Base(repoRoot)+"-"+DirWorktrees)
}
