// Package git holds the worktree record and everything needed to talk to
// git about worktrees without running commands itself.
//
// [ParseWorktreeList] turns `git worktree list --porcelain` output into
// [Worktree] values. The *Args helpers build the argument lists the worktree
// registry hands to a [github.com/metastacks/wtm/internal/cmd.Runner].
//
// # Porcelain format
//
// Blocks are separated by blank lines:
//
//	worktree /src/app
//	HEAD 1a2b3c4d5e6f...
//	branch refs/heads/main
//
//	worktree /src/app/.worktrees/feature-x
//	HEAD 9f8e7d6c5b4a...
//	detached
//
// The main worktree is the block marked `bare`, or else the first record.
// Blocks without HEAD are dropped.
//
// # Repository discovery
//
// [FindRoot] locates the worktree root for a directory using go-git, so no
// process is spawned while resolving the workspace.
package git
