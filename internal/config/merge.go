package config

import "maps"

// MergeLocal merges a local per-repo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	merged := *global
	merged.Hooks = mergeHooks(global.Hooks, local.Hooks)

	if local.WorktreeDir != "" {
		merged.WorktreeDir = local.WorktreeDir
	}
	if local.Enrich != nil {
		merged.Enrich = *local.Enrich
	}
	if local.Preserve != nil {
		merged.Preserve = *local.Preserve
	}

	return &merged
}

// mergeHooks merges local hooks into global hooks.
// Local hooks with the same name override global hooks.
// Local hooks with enabled=false remove the global hook.
func mergeHooks(global, local HooksConfig) HooksConfig {
	merged := HooksConfig{
		Hooks: make(map[string]Hook, len(global.Hooks)),
	}

	maps.Copy(merged.Hooks, global.Hooks)

	for name, hook := range local.Hooks {
		if !hook.IsEnabled() {
			delete(merged.Hooks, name)
			continue
		}
		merged.Hooks[name] = hook
	}

	return merged
}
