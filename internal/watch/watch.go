// Package watch reports changes to a repository's worktree set by watching
// its git common directory.
//
// git keeps one administrative directory per linked worktree under
// <common dir>/worktrees, so adding, removing or switching a worktree
// touches that tree. Main checkout branch switches touch <common dir>/HEAD.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/metastacks/wtm/internal/log"
)

// DefaultDebounce coalesces bursts of filesystem events; a single
// `git worktree add` writes several files.
const DefaultDebounce = 150 * time.Millisecond

// Watch sends on the returned channel after changes below commonDir
// settle for debounce. The channel holds at most one pending notification
// and is closed when ctx is done.
func Watch(ctx context.Context, commonDir string, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(commonDir); err != nil {
		watcher.Close()
		return nil, err
	}
	worktrees := filepath.Join(commonDir, "worktrees")
	addTree(watcher, worktrees)

	l := log.FromContext(ctx)
	changes := make(chan struct{}, 1)
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	go func() {
		defer watcher.Close()
		defer close(changes)

		timer := time.NewTimer(debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevant(commonDir, worktrees, event.Name) {
					continue
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						addTree(watcher, event.Name)
					}
				}
				l.Debug("worktree change", "op", event.Op.String(), "path", event.Name)
				timer.Reset(debounce)

			case <-timer.C:
				notify()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.Debug("watch error", "err", err)
			}
		}
	}()

	return changes, nil
}

// relevant reports whether a change to name can alter the worktree list.
func relevant(commonDir, worktrees, name string) bool {
	if name == worktrees || filepath.Dir(name) == worktrees {
		return true
	}
	if rel, err := filepath.Rel(worktrees, name); err == nil && filepath.IsLocal(rel) {
		return true
	}
	return name == filepath.Join(commonDir, "HEAD")
}

// addTree watches dir and its immediate subdirectories, ignoring errors for
// directories that do not exist yet.
func addTree(w *fsnotify.Watcher, dir string) {
	if err := w.Add(dir); err != nil {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			_ = w.Add(filepath.Join(dir, e.Name()))
		}
	}
}
