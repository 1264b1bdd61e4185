package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dagster-io/erk-sub014/internal/constants"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PoolSize != constants.DefaultPoolSize {
		t.Errorf("PoolSize = %d, want %d", cfg.PoolSize, constants.DefaultPoolSize)
	}
	if cfg.Graphite.Enabled {
		t.Error("Graphite.Enabled = true, want false by default")
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `pool_size = 6
worktrees_dir = "/tmp/wt"

[graphite]
enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PoolSize != 6 {
		t.Errorf("PoolSize = %d, want 6", cfg.PoolSize)
	}
	if cfg.WorktreesDir != "/tmp/wt" {
		t.Errorf("WorktreesDir = %q, want /tmp/wt", cfg.WorktreesDir)
	}
	if !cfg.Graphite.Enabled {
		t.Error("Graphite.Enabled = false, want true")
	}
}

func TestLoadInvalidPoolSizeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("pool_size = 0\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PoolSize != constants.DefaultPoolSize {
		t.Errorf("PoolSize = %d, want default %d", cfg.PoolSize, constants.DefaultPoolSize)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("pool_size = [not toml"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load succeeded on malformed TOML, want error")
	}
}

func TestResolveWorktreesDir(t *testing.T) {
	cfg := Default()
	got := cfg.ResolveWorktreesDir("/home/u/proj")
	want := "/home/u/proj-worktrees"
	if got != want {
		t.Errorf("ResolveWorktreesDir = %q, want %q", got, want)
	}

	cfg.WorktreesDir = "/custom/wt"
	if got := cfg.ResolveWorktreesDir("/home/u/proj"); got != "/custom/wt" {
		t.Errorf("ResolveWorktreesDir override = %q, want /custom/wt", got)
	}
}
