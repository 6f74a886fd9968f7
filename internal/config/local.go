package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repository override file.
const LocalConfigFileName = ".wtm.toml"

// LocalConfig holds per-repo configuration overrides from .wtm.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	WorktreeDir string
	Enrich      *bool
	Preserve    *PreserveConfig // replaces the global section when set
	Hooks       HooksConfig     // merge by name into global
}

type rawLocalConfig struct {
	WorktreeDir string          `toml:"worktree_dir"`
	Enrich      *bool           `toml:"enrich"`
	Preserve    *PreserveConfig `toml:"preserve"`
	Hooks       map[string]Hook `toml:"hooks"`
}

// LoadLocal reads a per-repo .wtm.toml config from the given repo path.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	configFile := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	local := &LocalConfig{
		WorktreeDir: raw.WorktreeDir,
		Enrich:      raw.Enrich,
		Preserve:    raw.Preserve,
		Hooks:       HooksConfig{Hooks: raw.Hooks},
	}
	if err := validateHooks(local.Hooks); err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	if local.Preserve != nil {
		if err := validatePreserve(*local.Preserve); err != nil {
			return nil, fmt.Errorf("%s: %w", configFile, err)
		}
	}
	return local, nil
}

const defaultLocalConfig = `# wtm local config (per-repo overrides)
# Place this file at the root of the main checkout.
# Settings here override the global config for this repository only.

# worktree_dir = "../worktrees"
# enrich = false

# [preserve]
# patterns = [".env"]

# Hooks - add repo-specific hooks or override global hooks
# Set enabled = false to disable a global hook for this repo
#
# [hooks.setup]
# command = "npm install"
# description = "Install dependencies"
# on = ["add"]
#
# [hooks.global-hook-name]
# enabled = false
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}

// InitLocal writes the local config template into repoPath.
func InitLocal(repoPath string, force bool) (string, error) {
	path := filepath.Join(repoPath, LocalConfigFileName)
	return path, writeTemplate(path, defaultLocalConfig, force)
}
