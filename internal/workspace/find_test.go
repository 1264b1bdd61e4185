package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindFromRepoRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	found, err := Find(root)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != root {
		t.Errorf("Find = %q, want %q", found, root)
	}
}

func TestFindFromNestedDir(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	nested := filepath.Join(root, "src", "deep", "pkg")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != root {
		t.Errorf("Find = %q, want %q", found, root)
	}
}

func TestFindGitFileMarker(t *testing.T) {
	// Linked worktrees have a .git file, not a directory.
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: /elsewhere\n"), 0644); err != nil {
		t.Fatalf("write .git file: %v", err)
	}

	found, err := Find(root)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != root {
		t.Errorf("Find = %q, want %q", found, root)
	}
}

func TestFindNotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Find(dir)
	if err != ErrNotFound {
		t.Errorf("Find = %v, want ErrNotFound", err)
	}
}

func TestIsRepo(t *testing.T) {
	root := t.TempDir()
	if IsRepo(root) {
		t.Error("IsRepo = true for plain directory")
	}
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	if !IsRepo(root) {
		t.Error("IsRepo = false for repository root")
	}
}

func TestEnsureErkDir(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureErkDir(root)
	if err != nil {
		t.Fatalf("EnsureErkDir: %v", err)
	}
	if dir != filepath.Join(root, ".erk") {
		t.Errorf("dir = %q, want .erk under root", dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected .erk directory to exist")
	}

	// Idempotent on second call.
	if _, err := EnsureErkDir(root); err != nil {
		t.Errorf("EnsureErkDir second call: %v", err)
	}
}
