package worktree

import (
	"context"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
)

// ListWorktrees returns the workspace's worktrees. A cached listing younger
// than the TTL is returned as is; otherwise git is run and the cache
// refreshed. Concurrent callers share one refresh.
func (r *Registry) ListWorktrees(ctx context.Context) ([]git.Worktree, error) {
	if r.root == "" {
		return nil, ErrNoRepository
	}
	if e, ok := r.slot.Fresh(r.now(), r.ttl); ok {
		return slices.Clone(e.Value), nil
	}
	list, err := r.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(list), nil
}

// CachedWorktrees returns the cached listing without waiting for git. ok is
// false when nothing has been cached yet. A missing or expired listing
// schedules a background refresh; the result is whatever was cached at the
// time of the call.
func (r *Registry) CachedWorktrees(ctx context.Context) (list []git.Worktree, ok bool) {
	e, fresh := r.slot.Fresh(r.now(), r.ttl)
	if !fresh && r.root != "" {
		r.refreshAsync(ctx)
	}
	if e == nil {
		return nil, false
	}
	return slices.Clone(e.Value), true
}

// Invalidate drops the cached listing. A refresh already running when
// Invalidate is called will not repopulate the cache.
func (r *Registry) Invalidate() {
	r.gen.Add(1)
	r.slot.Clear()
}

// refresh lists worktrees with git, enriches them and stores the result,
// unless the cache was invalidated meanwhile.
func (r *Registry) refresh(ctx context.Context) ([]git.Worktree, error) {
	gen := r.gen.Load()
	v, err, _ := r.flight.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		var list []git.Worktree
		err := r.do(ctx, func(ctx context.Context) error {
			args := git.ListArgs()
			res := r.runner.Run(ctx, r.root, args...)
			if !res.OK {
				return &ToolError{Args: args, Lines: res.Lines}
			}
			list = git.ParseWorktreeList(res.Lines)
			if r.enrich {
				list = r.enrichAll(ctx, list)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if r.gen.Load() == gen {
			r.slot.Store(list, r.now())
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]git.Worktree), nil
}

func (r *Registry) refreshAsync(ctx context.Context) {
	if !r.pending.CompareAndSwap(false, true) {
		return
	}
	err := r.sched.Go(ctx, func(ctx context.Context) {
		defer r.pending.Store(false)
		if _, err := r.refresh(ctx); err != nil {
			log.FromContext(ctx).Debug("background worktree refresh failed", "root", r.root, "err", err)
		}
	})
	if err != nil {
		r.pending.Store(false)
	}
}

// enrichAll returns new records carrying dirty and unpushed flags. Checks
// run in parallel, bounded by r.workers.
func (r *Registry) enrichAll(ctx context.Context, list []git.Worktree) []git.Worktree {
	out := make([]git.Worktree, len(list))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, wt := range list {
		g.Go(func() error {
			out[i] = wt.WithStatus(r.uncommitted(ctx, wt.Path), r.unpushed(ctx, wt.Path))
			return nil
		})
	}
	_ = g.Wait()
	return out
}
