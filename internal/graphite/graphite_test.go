package graphite

import (
	"os/exec"
	"testing"
)

func TestTrackBranchWithoutGt(t *testing.T) {
	if _, err := exec.LookPath("gt"); err == nil {
		t.Skip("gt installed; this test covers the missing-binary path")
	}

	if IsAvailable() {
		t.Error("IsAvailable = true without gt on PATH")
	}
	if err := TrackBranch(t.TempDir(), "feature-a", "main"); err == nil {
		t.Error("TrackBranch succeeded without gt on PATH")
	}
}
