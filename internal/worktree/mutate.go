package worktree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
)

// CreateWorktree creates a worktree for branch at target. With createBranch
// a new branch is created from the current HEAD; otherwise an existing
// branch is checked out. On success the cache is rebuilt and the new
// worktree's record is returned.
func (r *Registry) CreateWorktree(ctx context.Context, branch, target string, createBranch bool) (git.Worktree, error) {
	if r.root == "" {
		return git.Worktree{}, ErrNoRepository
	}
	if strings.TrimSpace(branch) == "" {
		return git.Worktree{}, ErrEmptyBranch
	}

	target, err := filepath.Abs(target)
	if err != nil {
		return git.Worktree{}, err
	}
	if _, err := os.Stat(target); err == nil {
		return git.Worktree{}, fmt.Errorf("%w: %s", ErrTargetExists, target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return git.Worktree{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return git.Worktree{}, fmt.Errorf("create parent directory: %w", err)
	}

	l := log.FromContext(ctx)
	l.Debug("creating worktree", "branch", branch, "path", target, "new_branch", createBranch)

	args := git.AddArgs(branch, target, createBranch)
	res, err := r.run(ctx, r.root, args...)
	if err != nil {
		return git.Worktree{}, err
	}
	if !res.OK {
		return git.Worktree{}, &ToolError{Args: args, Lines: res.Lines}
	}

	r.Invalidate()
	list, err := r.refresh(ctx)
	if err != nil {
		return git.Worktree{}, fmt.Errorf("%w: %v", ErrInfoUnavailable, err)
	}
	for _, wt := range list {
		if git.SamePath(wt.Path, target) {
			return wt, nil
		}
	}
	return git.Worktree{}, ErrInfoUnavailable
}

// RemoveWorktree removes the worktree at path. Without force git refuses to
// remove a worktree with local modifications; the caller decides whether to
// retry with force. On success the cache and any directory associations
// under path are dropped.
func (r *Registry) RemoveWorktree(ctx context.Context, path string, force bool) error {
	if r.root == "" {
		return ErrNoRepository
	}

	l := log.FromContext(ctx)
	l.Debug("removing worktree", "path", path, "force", force)

	args := git.RemoveArgs(path, force)
	res, err := r.run(ctx, r.root, args...)
	if err != nil {
		return err
	}
	if !res.OK {
		return &ToolError{Args: args, Lines: res.Lines}
	}

	r.Invalidate()
	if r.assoc != nil {
		if err := r.assoc.ForgetUnder(git.NormalizePath(path)); err != nil {
			l.Warn("failed to forget directories of removed worktree", "path", path, "err", err)
		}
	}
	if _, err := r.refresh(ctx); err != nil {
		l.Debug("refresh after removal failed", "err", err)
	}
	return nil
}
