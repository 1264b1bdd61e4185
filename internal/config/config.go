// Package config loads repository-local erk configuration.
//
// Config lives at <repo>/.erk/config.toml and is entirely optional: a
// missing file yields defaults. Example:
//
//	pool_size = 6
//	worktrees_dir = "/abs/path/to/worktrees"
//
//	[graphite]
//	enabled = true
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dagster-io/erk-sub014/internal/constants"
)

// Config holds repository-local erk settings.
type Config struct {
	// PoolSize is the worktree pool capacity. Zero means unset.
	PoolSize int `toml:"pool_size"`

	// WorktreesDir overrides where managed worktrees are created.
	// Empty means the default sibling directory of the repository root.
	WorktreesDir string `toml:"worktrees_dir"`

	// Graphite configures the optional branch-tracking integration.
	Graphite GraphiteConfig `toml:"graphite"`
}

// GraphiteConfig controls the Graphite branch-tracking integration.
type GraphiteConfig struct {
	// Enabled turns on `gt track` registration for created branches.
	Enabled bool `toml:"enabled"`
}

// Default returns the compiled-in default configuration.
func Default() *Config {
	return &Config{
		PoolSize: constants.DefaultPoolSize,
	}
}

// Load reads the config file at path. A missing file returns defaults;
// a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.PoolSize <= 0 {
		cfg.PoolSize = constants.DefaultPoolSize
	}

	return cfg, nil
}

// LoadForRepo reads the config for a repository root.
func LoadForRepo(repoRoot string) (*Config, error) {
	return Load(constants.ConfigPath(repoRoot))
}

// ResolveWorktreesDir returns the directory where managed worktrees live
// for the given repository root, honoring the config override.
func (c *Config) ResolveWorktreesDir(repoRoot string) string {
	if c.WorktreesDir != "" {
		return c.WorktreesDir
	}
	return constants.WorktreesDir(repoRoot)
}
