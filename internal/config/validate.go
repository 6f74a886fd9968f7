package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidHookTriggers are the accepted values of a hook's "on" list.
var ValidHookTriggers = []string{"add", "remove", "open", "all"}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WorktreeDir) == "" {
		return fmt.Errorf("worktree_dir must not be empty")
	}
	if c.CommandTimeout.Duration <= 0 {
		return fmt.Errorf("command_timeout must be positive, got %s", c.CommandTimeout)
	}
	if c.CacheTTL.Duration < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if err := ValidatePath(c.StateDir, "state_dir"); err != nil {
		return err
	}
	if err := validatePreserve(c.Preserve); err != nil {
		return err
	}
	return validateHooks(c.Hooks)
}

func validatePreserve(pc PreserveConfig) error {
	for _, pat := range pc.Patterns {
		if _, err := filepath.Match(pat, ""); err != nil {
			return fmt.Errorf("preserve.patterns: invalid pattern %q", pat)
		}
	}
	return nil
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

func validateHooks(hc HooksConfig) error {
	names := make([]string, 0, len(hc.Hooks))
	for name := range hc.Hooks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		hook := hc.Hooks[name]
		if hook.IsEnabled() && strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("hook %q has no command", name)
		}
		for _, on := range hook.On {
			if err := validateEnum(on, "hooks."+name+".on", ValidHookTriggers); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
