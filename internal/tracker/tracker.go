// Package tracker records which worktrees are open in a live session, so
// destructive operations can refuse to touch them.
//
// A registration maps a worktree path to a [Handle]. Handles that report
// themselves dead are pruned lazily when queried, so a crashed session never
// blocks removal for longer than it takes to ask.
package tracker

import (
	"slices"
	"sync"

	"github.com/metastacks/wtm/internal/git"
)

// Handle is an open session. Alive reports whether it is still running.
type Handle interface {
	Alive() bool
}

// Tracker maps normalized worktree paths to the session holding them open.
// It is safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	open map[string]Handle
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{open: make(map[string]Handle)}
}

var (
	shared     *Tracker
	sharedOnce sync.Once
)

// Shared returns the process-wide Tracker, creating it on first use.
// Call Close on it during shutdown.
func Shared() *Tracker {
	sharedOnce.Do(func() { shared = New() })
	return shared
}

// Register associates path with h, replacing any previous handle.
func (t *Tracker) Register(path string, h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open[git.NormalizePath(path)] = h
}

// Unregister removes the association for path, if any.
func (t *Tracker) Unregister(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.open, git.NormalizePath(path))
}

// IsOpen reports whether a live session holds path. The answer is a
// snapshot: the session may end right after.
func (t *Tracker) IsOpen(path string) bool {
	_, ok := t.Owner(path)
	return ok
}

// Owner returns the live handle holding path. A dead handle is dropped and
// reported as absent.
func (t *Tracker) Owner(path string) (Handle, bool) {
	key := git.NormalizePath(path)

	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.open[key]
	if !ok {
		return nil, false
	}
	if !h.Alive() {
		delete(t.open, key)
		return nil, false
	}
	return h, true
}

// ListOpen drops dead handles and returns the remaining paths, sorted.
func (t *Tracker) ListOpen() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	paths := make([]string, 0, len(t.open))
	for p, h := range t.open {
		if !h.Alive() {
			delete(t.open, p)
			continue
		}
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Close forgets every registration.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.open)
}
