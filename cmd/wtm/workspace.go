package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/metastacks/wtm/internal/cmd"
	"github.com/metastacks/wtm/internal/config"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/history"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/registry"
	"github.com/metastacks/wtm/internal/resolve"
	"github.com/metastacks/wtm/internal/safety"
	"github.com/metastacks/wtm/internal/sched"
	"github.com/metastacks/wtm/internal/storage"
	"github.com/metastacks/wtm/internal/tracker"
	"github.com/metastacks/wtm/internal/ui"
	"github.com/metastacks/wtm/internal/worktree"
)

// workspace bundles everything a command needs to work on the repository
// containing dir.
type workspace struct {
	dir      string
	cfg      *config.Config // global config merged with the repo's .wtm.toml
	resolver *config.ConfigResolver
	stateDir string
	runner   cmd.Runner // the configured git executable
	dirs     *registry.Store
	sessions *tracker.Store
	tracker  *tracker.Tracker
	sched    *sched.Scheduler
	reg      *worktree.Registry
}

// openWorkspace resolves the repository for dir, consulting the directory
// registry before asking git, and loads the persisted sessions.
func openWorkspace(ctx context.Context, dir string) (*workspace, error) {
	l := log.FromContext(ctx)

	resolver := resolverFor(ctx)
	global := resolver.Global()

	stateDir, err := stateDirFor(ctx)
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		dir:      dir,
		cfg:      global,
		resolver: resolver,
		stateDir: stateDir,
		dirs:     registry.NewStore(stateDir),
		sessions: tracker.NewStore(stateDir),
		tracker:  tracker.Shared(),
		sched:    sched.New(sched.DefaultWorkers),
	}

	root, err := ws.findRoot(dir)
	if err != nil {
		return nil, err
	}
	if root != "" {
		repoCfg, err := resolver.ConfigForRepo(root)
		if err != nil {
			l.Warn("ignoring local config", "err", err)
		} else {
			ws.cfg = repoCfg
		}
	}

	if err := ws.sessions.Load(ws.tracker); err != nil {
		l.Warn("failed to load sessions", "err", err)
	}

	ws.runner = cmd.NewExec(ws.cfg.GitPath, ws.cfg.CommandTimeout.Duration)
	ws.reg = worktree.New(root, ws.runner,
		worktree.WithScheduler(ws.sched),
		worktree.WithSettings(resolver),
		worktree.WithAssociations(ws.dirs),
		worktree.WithTTL(ws.cfg.CacheTTL.Duration),
		worktree.WithEnrichment(ws.cfg.Enrich),
	)
	l.Debug("workspace", "dir", dir, "root", root, "state", stateDir)
	return ws, nil
}

// resolverFor returns the config resolver attached to ctx, or one backed by
// the default configuration.
func resolverFor(ctx context.Context) *config.ConfigResolver {
	if r := config.ResolverFromContext(ctx); r != nil {
		return r
	}
	def := config.Default()
	return config.NewResolver(&def)
}

// stateDirFor returns the configured state directory, creating it if needed.
func stateDirFor(ctx context.Context) (string, error) {
	dir, err := storage.StateDir(resolverFor(ctx).Global().StateDir)
	if err != nil {
		return "", fmt.Errorf("state directory: %w", err)
	}
	return dir, nil
}

// findRoot returns the workspace root for dir, empty if dir is not inside
// a repository.
func (ws *workspace) findRoot(dir string) (string, error) {
	if root, ok := ws.dirs.Lookup(dir); ok {
		return root, nil
	}
	root, err := git.FindRoot(dir)
	if errors.Is(err, git.ErrNotRepository) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if err := ws.dirs.Remember(dir, root); err != nil {
		return root, fmt.Errorf("remember directory: %w", err)
	}
	return root, nil
}

// Close waits for background work to finish.
func (ws *workspace) Close() {
	ws.sched.Close()
}

// historyPath returns the history file in the state directory.
func (ws *workspace) historyPath() string {
	return history.DefaultPath(ws.stateDir)
}

// target resolves a command-line worktree argument. An empty argument means
// the worktree containing the working directory.
func (ws *workspace) target(ctx context.Context, arg string) (git.Worktree, error) {
	m, err := ws.find(ctx, arg)
	return m.Worktree, err
}

// find is target, also reporting whether arg only matched fuzzily.
func (ws *workspace) find(ctx context.Context, arg string) (resolve.Match, error) {
	list, err := ws.reg.ListWorktrees(ctx)
	if err != nil {
		return resolve.Match{}, err
	}
	if arg == "" {
		wt, ok := resolve.Current(list, ws.dir)
		if !ok {
			return resolve.Match{}, fmt.Errorf("%s is not inside a worktree", ws.dir)
		}
		return resolve.Match{Worktree: wt}, nil
	}
	return resolve.Find(list, arg, ws.dir)
}

// policy returns the removal checks for this workspace. force answers every
// prompt with yes; a worktree open in a session still blocks removal.
func (ws *workspace) policy(force bool) *safety.Policy {
	var confirm safety.Confirmer = ui.NewConfirmer(yes)
	if force {
		confirm = safety.Always(true)
	}
	return &safety.Policy{Open: ws.tracker, Status: ws.reg, Confirm: confirm}
}
