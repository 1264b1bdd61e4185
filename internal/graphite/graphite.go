// Package graphite integrates with the Graphite CLI for branch tracking.
//
// Graphite (gt) keeps stacked branches in its own metadata. When enabled,
// erk registers newly created branches so they show up in gt's stack view.
// All operations are optional: failures surface as warnings, never errors.
package graphite

import (
	"fmt"
	"os/exec"
	"strings"
)

// IsAvailable reports whether the gt binary is on PATH.
func IsAvailable() bool {
	_, err := exec.LookPath("gt")
	return err == nil
}

// TrackBranch registers branch with Graphite, parented on trunk.
// Must be called after the branch exists locally.
func TrackBranch(repoRoot, branch, trunk string) error {
	cmd := exec.Command("gt", "track", branch, "--parent", trunk)
	cmd.Dir = repoRoot
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("gt track %s: %s", branch, msg)
	}
	return nil
}
