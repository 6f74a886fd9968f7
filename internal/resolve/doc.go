// Package resolve turns a user-supplied target into a worktree.
//
// Commands such as `wtm remove`, `wtm open` and `wtm info` accept a target
// that may be a path, a branch name, a worktree directory name or a fuzzy
// abbreviation. Resolution tries, in order:
//
//   - a path (absolute, or relative to the working directory when it
//     starts with ".")
//   - an exact branch name
//   - an exact display name or directory name
//   - a fuzzy match on display names, accepted only when it is unambiguous
//
// With no target, [Current] picks the worktree containing the working
// directory.
package resolve
