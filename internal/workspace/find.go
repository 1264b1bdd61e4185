// Package workspace provides git repository detection for erk.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound indicates no git repository was found.
var ErrNotFound = errors.New("not inside a git repository")

// Marker used to detect a repository root.
const (
	// GitMarker identifies a repository root. It is a directory in a
	// primary checkout and a file in a linked worktree; both count.
	GitMarker = ".git"
)

// Find locates the repository root by walking up from the given directory.
// Does not resolve symlinks to stay consistent with os.Getwd().
func Find(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	current := absDir
	for {
		if _, err := os.Stat(filepath.Join(current, GitMarker)); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotFound
		}
		current = parent
	}
}

// FindFromCwd locates the repository root from the current working directory.
func FindFromCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return Find(cwd)
}

// IsRepo checks if the given directory is a git repository root.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, GitMarker))
	return err == nil
}

// EnsureErkDir creates the .erk/ metadata directory under the repository
// root if it does not exist, and returns its path.
func EnsureErkDir(repoRoot string) (string, error) {
	dir := filepath.Join(repoRoot, ".erk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating .erk directory: %w", err)
	}
	return dir, nil
}
