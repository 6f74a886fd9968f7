// Package hooks runs user-defined shell commands after worktree operations.
//
// Hooks are declared in config:
//
//	[hooks.editor]
//	command = "code {path}"
//	on = ["add"]
//
//	[hooks.notify]
//	command = "echo removed {branch}"
//	on = ["remove"]
//
// A hook runs automatically when its "on" list contains the trigger
// ("add", "remove", "open") or "all". Hooks without "on" only run when named
// explicitly with --hook. --no-hook skips every hook.
//
// # Placeholders
//
//   - {path}: absolute worktree path
//   - {branch}: branch name
//   - {repo}: repository name from the origin remote
//   - {folder}: folder name of the main checkout
//   - {main-repo}: path of the main checkout
//   - {trigger}: the operation that ran the hook
//
// Custom values come from --arg key=value and are referenced as {key},
// {key:raw} (unquoted) or {key:-default}. --arg key=- reads the value from
// piped stdin. All values except :raw are shell-quoted.
//
// Hooks run with sh -c in the worktree directory; for "remove" the
// worktree is gone, so they run in the main checkout.
package hooks
