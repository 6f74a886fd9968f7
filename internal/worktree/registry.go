package worktree

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/metastacks/wtm/internal/cache"
	"github.com/metastacks/wtm/internal/cmd"
	"github.com/metastacks/wtm/internal/config"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/sched"
)

// Settings supplies per-repository settings.
type Settings interface {
	// WorktreeDir returns the worktree directory for the repository whose
	// main checkout is mainRepo.
	WorktreeDir(mainRepo string) string
}

// StaticSettings uses one worktree directory for every repository.
type StaticSettings string

// WorktreeDir implements Settings.
func (s StaticSettings) WorktreeDir(string) string {
	return string(s)
}

// Associations is notified when a worktree is removed so that state keyed
// by directories inside it can be dropped.
type Associations interface {
	ForgetUnder(path string) error
}

// DefaultEnrichWorkers bounds concurrent status checks during a refresh.
const DefaultEnrichWorkers = 4

// Registry lists and mutates the worktrees of one workspace through git,
// serving listings from a short-lived cache.
//
// All methods are safe for concurrent use.
type Registry struct {
	root     string
	runner   cmd.Runner
	ttl      time.Duration
	now      func() time.Time
	sched    *sched.Scheduler
	settings Settings
	assoc    Associations
	enrich   bool
	workers  int

	slot    cache.Slot[[]git.Worktree]
	flight  singleflight.Group
	gen     atomic.Uint64
	pending atomic.Bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL sets how long a listing is served from cache.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithScheduler sets the scheduler used for blocking work.
func WithScheduler(s *sched.Scheduler) Option {
	return func(r *Registry) { r.sched = s }
}

// WithSettings sets the per-repository settings source.
func WithSettings(s Settings) Option {
	return func(r *Registry) { r.settings = s }
}

// WithAssociations registers state to clean up on removal.
func WithAssociations(a Associations) Option {
	return func(r *Registry) { r.assoc = a }
}

// WithEnrichment toggles dirty and unpushed checks during a refresh.
func WithEnrichment(enabled bool) Option {
	return func(r *Registry) { r.enrich = enabled }
}

// New returns a Registry for the workspace rooted at root. An empty root
// means no repository was found; operations then fail with ErrNoRepository.
func New(root string, runner cmd.Runner, opts ...Option) *Registry {
	r := &Registry{
		runner:   runner,
		ttl:      cache.DefaultTTL,
		now:      time.Now,
		settings: StaticSettings(config.DefaultWorktreeDir),
		enrich:   true,
		workers:  DefaultEnrichWorkers,
	}
	if root != "" {
		r.root = git.NormalizePath(root)
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sched == nil {
		r.sched = sched.New(sched.DefaultWorkers)
	}
	return r
}

// Root returns the workspace root, empty if there is none.
func (r *Registry) Root() string {
	return r.root
}

// do runs fn through the scheduler, off the caller's goroutine when the
// caller declared itself foreground.
func (r *Registry) do(ctx context.Context, fn func(context.Context) error) error {
	return r.sched.Do(ctx, fn)
}

// run executes git through the scheduler.
func (r *Registry) run(ctx context.Context, dir string, args ...string) (cmd.Result, error) {
	var res cmd.Result
	err := r.do(ctx, func(ctx context.Context) error {
		res = r.runner.Run(ctx, dir, args...)
		return nil
	})
	return res, err
}
