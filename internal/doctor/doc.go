// Package doctor finds and repairs stale state left behind by wtm and git.
//
// Checks cover:
//
//   - Sessions: entries in sessions.json whose shell has exited without
//     unregistering (for example after a crash).
//   - Directories: dirs.json associations whose directory or repository
//     no longer exists.
//   - History: history.json entries for worktrees deleted outside wtm.
//   - Git: administrative files of worktrees whose directory is gone, as
//     reported by `git worktree prune --dry-run`.
//
// [Checker.Check] only reports; [Checker.Fix] repairs the reported issues.
package doctor
