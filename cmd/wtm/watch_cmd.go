package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/output"
	"github.com/metastacks/wtm/internal/sched"
	"github.com/metastacks/wtm/internal/watch"
)

// renderInterval is how often the watch loop looks for a new listing.
const renderInterval = 250 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Print the worktree table whenever it changes",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `Watch the repository for worktree changes and print the table
again whenever it changes. Runs until interrupted.

The loop never waits for git: it renders whatever listing is cached
and lets refreshes run in the background.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if ws.reg.Root() == "" {
				return fmt.Errorf("%s: %w", ws.dir, git.ErrNotRepository)
			}
			common, err := git.CommonDir(ctx, ws.runner, ws.reg.Root())
			if err != nil {
				return err
			}
			events, err := watch.Watch(ctx, common, debounce)
			if err != nil {
				return err
			}

			log.FromContext(ctx).Printf("Watching %s (Ctrl+C to stop)\n", common)
			return watchLoop(sched.WithExec(ctx, sched.Foreground), ws, events, output.FromContext(ctx).Writer())
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Wait this long for changes to settle")

	return cmd
}

// watchLoop renders the cached listing each time it changes. Filesystem
// events invalidate the cache; the next render tick schedules a refresh.
// Sessions are reloaded every tick so shells opened by other wtm processes
// show up as open.
func watchLoop(ctx context.Context, ws *workspace, events <-chan struct{}, w io.Writer) error {
	l := log.FromContext(ctx)
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	var shown []worktreeDisplay
	render := func() error {
		list, ok := ws.reg.CachedWorktrees(ctx)
		if !ok {
			return nil
		}
		if err := ws.sessions.Load(ws.tracker); err != nil {
			l.Debug("reload sessions", "err", err)
		}
		rows := displayRows(list, ws.dir, ws.tracker)
		if shown != nil && slices.Equal(rows, shown) {
			return nil
		}
		shown = rows
		fmt.Fprintf(w, "\n%s\n", time.Now().Format(time.TimeOnly))
		return writeTable(w, rows)
	}

	for {
		if err := render(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			ws.reg.Invalidate()
		case <-ticker.C:
		}
	}
}
