// Package config loads wtm configuration from TOML files.
//
// The global file lives at ~/.config/wtm/config.toml (WTM_CONFIG overrides
// the location). A repository may carry a .wtm.toml at the root of its main
// checkout that overrides worktree_dir and enrich and adds or disables hooks.
// [ConfigResolver] merges the two lazily per repository.
//
// Environment variables override the global file:
//
//	WTM_WORKTREE_DIR  worktree_dir
//	WTM_GIT           git_path
//	WTM_STATE_DIR     state_dir
//
// A missing file is not an error; an invalid one is.
package config
