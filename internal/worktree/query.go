package worktree

import (
	"context"
	"os"

	"github.com/metastacks/wtm/internal/git"
)

// WorktreeInfo returns the worktree whose path equals path.
func (r *Registry) WorktreeInfo(ctx context.Context, path string) (git.Worktree, bool) {
	list, err := r.ListWorktrees(ctx)
	if err != nil {
		return git.Worktree{}, false
	}
	for _, wt := range list {
		if git.SamePath(wt.Path, path) {
			return wt, true
		}
	}
	return git.Worktree{}, false
}

// IsWorktree reports whether the workspace root is a linked worktree
// rather than the main checkout.
func (r *Registry) IsWorktree(ctx context.Context) bool {
	if r.root == "" {
		return false
	}
	wt, ok := r.WorktreeInfo(ctx, r.root)
	return ok && !wt.IsMain
}

// MainRepositoryPath returns the path of the main checkout.
func (r *Registry) MainRepositoryPath(ctx context.Context) (string, bool) {
	list, err := r.ListWorktrees(ctx)
	if err != nil {
		return "", false
	}
	for _, wt := range list {
		if wt.IsMain {
			return wt.Path, true
		}
	}
	return "", false
}

// DefaultWorktreePath returns where a worktree for branch would be created:
// the configured worktree directory of the main checkout, plus the
// sanitized branch name.
func (r *Registry) DefaultWorktreePath(ctx context.Context, branch string) (string, bool) {
	main, ok := r.MainRepositoryPath(ctx)
	if !ok {
		return "", false
	}
	return DefaultPath(main, r.settings.WorktreeDir(main), branch), true
}

// HasUncommittedChanges reports whether the worktree at path has staged,
// unstaged or untracked changes. It always asks git; the answer is never
// cached. A path that is not an existing directory has no changes.
func (r *Registry) HasUncommittedChanges(ctx context.Context, path string) bool {
	var dirty bool
	_ = r.do(ctx, func(ctx context.Context) error {
		dirty = r.uncommitted(ctx, path)
		return nil
	})
	return dirty
}

// HasUnpushedCommits reports whether the worktree at path has commits its
// upstream lacks. No upstream, or any git failure, counts as none.
func (r *Registry) HasUnpushedCommits(ctx context.Context, path string) bool {
	var unpushed bool
	_ = r.do(ctx, func(ctx context.Context) error {
		unpushed = r.unpushed(ctx, path)
		return nil
	})
	return unpushed
}

func (r *Registry) uncommitted(ctx context.Context, path string) bool {
	if !isDir(path) {
		return false
	}
	res := r.runner.Run(ctx, path, git.StatusArgs()...)
	return res.OK && !res.Empty()
}

func (r *Registry) unpushed(ctx context.Context, path string) bool {
	if !isDir(path) {
		return false
	}
	res := r.runner.Run(ctx, path, git.UnpushedArgs()...)
	return res.OK && !res.Empty()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
