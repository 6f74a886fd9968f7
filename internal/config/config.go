package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults for unset configuration values.
const (
	DefaultWorktreeDir    = ".worktrees"
	DefaultGitPath        = "git"
	DefaultCommandTimeout = 30 * time.Second
	DefaultCacheTTL       = 5 * time.Second
)

// Duration is a time.Duration read from a TOML string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Hook defines a command run after a worktree operation
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"`      // triggers this hook runs on (empty = only via --hook)
	Enabled     *bool    `toml:"enabled"` // nil = enabled; false in a local config removes a global hook
}

// IsEnabled returns false only if the hook was explicitly disabled.
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// RunsOn reports whether the hook runs automatically for trigger.
func (h Hook) RunsOn(trigger string) bool {
	return slices.Contains(h.On, trigger) || slices.Contains(h.On, "all")
}

// PreserveConfig selects git-ignored files copied into new worktrees.
type PreserveConfig struct {
	Patterns []string `toml:"patterns" json:"patterns"` // globs matched against the file name
	Exclude  []string `toml:"exclude" json:"exclude"`   // path segments never descended into
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// Config holds the wtm configuration
type Config struct {
	WorktreeDir    string         `toml:"worktree_dir"`
	GitPath        string         `toml:"git_path"`
	CommandTimeout Duration       `toml:"command_timeout"`
	CacheTTL       Duration       `toml:"cache_ttl"`
	Enrich         bool           `toml:"enrich"`
	StateDir       string         `toml:"state_dir"`
	Preserve       PreserveConfig `toml:"preserve"`
	Hooks          HooksConfig    `toml:"-"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		WorktreeDir:    DefaultWorktreeDir,
		GitPath:        DefaultGitPath,
		CommandTimeout: Duration{DefaultCommandTimeout},
		CacheTTL:       Duration{DefaultCacheTTL},
		Enrich:         true,
		Hooks:          HooksConfig{Hooks: map[string]Hook{}},
	}
}

// rawConfig is used for initial TOML parsing before processing hooks
type rawConfig struct {
	WorktreeDir    string          `toml:"worktree_dir"`
	GitPath        string          `toml:"git_path"`
	CommandTimeout *Duration       `toml:"command_timeout"`
	CacheTTL       *Duration       `toml:"cache_ttl"`
	Enrich         *bool           `toml:"enrich"`
	StateDir       string          `toml:"state_dir"`
	Preserve       PreserveConfig  `toml:"preserve"`
	Hooks          map[string]Hook `toml:"hooks"`
}

// Path returns the path to the global config file.
// WTM_CONFIG overrides the default ~/.config/wtm/config.toml.
func Path() (string, error) {
	if p := os.Getenv("WTM_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wtm", "config.toml"), nil
}

// Load reads the global config file and applies environment overrides.
// Returns Default() if the file doesn't exist.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return applyEnv(Default())
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Default(), err
	}
	return applyEnv(cfg)
}

// LoadFile reads config from path.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	if raw.WorktreeDir != "" {
		cfg.WorktreeDir = raw.WorktreeDir
	}
	if raw.GitPath != "" {
		cfg.GitPath = raw.GitPath
	}
	if raw.CommandTimeout != nil {
		cfg.CommandTimeout = *raw.CommandTimeout
	}
	if raw.CacheTTL != nil {
		cfg.CacheTTL = *raw.CacheTTL
	}
	if raw.Enrich != nil {
		cfg.Enrich = *raw.Enrich
	}
	cfg.StateDir = raw.StateDir
	cfg.Preserve = raw.Preserve
	cfg.Hooks = HooksConfig{Hooks: raw.Hooks}
	if cfg.Hooks.Hooks == nil {
		cfg.Hooks.Hooks = map[string]Hook{}
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides config values from WTM_* environment variables.
func applyEnv(cfg Config) (Config, error) {
	if v := os.Getenv("WTM_WORKTREE_DIR"); v != "" {
		cfg.WorktreeDir = v
	}
	if v := os.Getenv("WTM_GIT"); v != "" {
		cfg.GitPath = v
	}
	if v := os.Getenv("WTM_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

const defaultConfig = `# wtm configuration

# Directory for new worktrees.
# Relative paths are resolved against the main repository checkout,
# absolute paths and ~/ are used as-is.
# worktree_dir = ".worktrees"

# git executable used for all worktree operations
# git_path = "git"

# Upper bound for a single git invocation
# command_timeout = "30s"

# How long a worktree listing is served from memory before refreshing
# cache_ttl = "5s"

# Check every worktree for uncommitted and unpushed changes when listing.
# Disable for repositories with many worktrees.
# enrich = true

# Where wtm keeps sessions.json, dirs.json and history.json
# Must be an absolute path or start with ~
# state_dir = "~/.wtm"

# Git-ignored files copied from the main checkout into new worktrees.
# Patterns match file names; excluded directories are skipped entirely.
# Existing files are never overwritten.
#
# [preserve]
# patterns = [".env", ".env.*", ".envrc"]
# exclude = ["node_modules", "vendor"]

# Hooks run after worktree operations.
# Hooks with "on" run automatically for matching triggers.
# Hooks without "on" only run when called with --hook=name.
#
# [hooks.editor]
# command = "code {path}"
# description = "Open the new worktree in VS Code"
# on = ["add"]
#
# [hooks.log]
# command = "echo removed {branch} from {repo} >> ~/wtm.log"
# on = ["remove"]
#
# Available "on" values: "add", "remove", "open", "all"
#
# Placeholders:
#   {path}      - absolute worktree path
#   {branch}    - branch name (empty for detached worktrees)
#   {repo}      - repository name from the origin remote
#   {folder}    - main repository folder name
#   {main-repo} - main repository path
#   {trigger}   - operation that triggered the hook
#   {key}       - value passed with --arg key=value
#
# Values are shell-quoted. Use {key:raw} to skip quoting and
# {key:-default} to supply a fallback.
`

// Init creates a default config file at Path().
// If force is true, overwrites existing file.
// Returns the path to the created file.
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, writeTemplate(path, defaultConfig, force)
}

func writeTemplate(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("config file already exists: " + path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// DefaultConfig returns the global configuration template content.
func DefaultConfig() string {
	return defaultConfig
}
