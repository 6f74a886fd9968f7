package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/metastacks/wtm/internal/cmd"
	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/history"
	"github.com/metastacks/wtm/internal/registry"
	"github.com/metastacks/wtm/internal/tracker"
)

// Category groups issues by the state they concern.
type Category string

const (
	CategorySessions Category = "sessions"
	CategoryDirs     Category = "dirs"
	CategoryHistory  Category = "history"
	CategoryGit      Category = "git"
)

var categoryOrder = []Category{CategorySessions, CategoryDirs, CategoryHistory, CategoryGit}

// Issue is one problem found by Check.
type Issue struct {
	Category    Category `json:"category"`
	Key         string   `json:"key"` // path or session the issue is about
	Description string   `json:"description"`
}

// Checker inspects wtm's state files and, when Root is set, the worktree
// administration of that repository.
type Checker struct {
	Sessions    *tracker.Store
	Dirs        *registry.Store
	HistoryFile string
	Runner      cmd.Runner
	Root        string
}

// Check returns every issue found. Errors reading one kind of state do not
// stop the other checks; they are joined into the returned error.
func (c *Checker) Check(ctx context.Context) ([]Issue, error) {
	var (
		issues []Issue
		errs   []error
	)

	stale, err := c.Sessions.Stale()
	errs = append(errs, err)
	for _, s := range stale {
		issues = append(issues, Issue{
			Category:    CategorySessions,
			Key:         s.Path,
			Description: "session of exited process " + strconv.Itoa(s.PID),
		})
	}

	assocs, err := c.Dirs.Stale()
	errs = append(errs, err)
	for _, a := range assocs {
		issues = append(issues, Issue{
			Category:    CategoryDirs,
			Key:         a.Dir,
			Description: "directory or repository " + a.Repo + " no longer exists",
		})
	}

	h, err := history.Load(c.HistoryFile)
	errs = append(errs, err)
	if h != nil {
		for _, e := range h.Entries {
			if _, err := os.Stat(e.Path); errors.Is(err, os.ErrNotExist) {
				issues = append(issues, Issue{
					Category:    CategoryHistory,
					Key:         e.Path,
					Description: "worktree no longer exists",
				})
			}
		}
	}

	prunable, err := c.prunable(ctx)
	errs = append(errs, err)
	for _, line := range prunable {
		issues = append(issues, Issue{Category: CategoryGit, Key: c.Root, Description: line})
	}

	return issues, errors.Join(errs...)
}

// prunable lists the stale worktrees git would prune.
func (c *Checker) prunable(ctx context.Context) ([]string, error) {
	if c.Root == "" || c.Runner == nil {
		return nil, nil
	}
	res := c.Runner.Run(ctx, c.Root, git.PruneArgs(true)...)
	if !res.OK {
		return nil, fmt.Errorf("git worktree prune: %s", res.Text())
	}
	var lines []string
	for _, l := range res.Lines {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// Fix repairs the categories present in issues.
func (c *Checker) Fix(ctx context.Context, issues []Issue) error {
	present := make(map[Category]bool)
	for _, i := range issues {
		present[i.Category] = true
	}

	var errs []error
	if present[CategorySessions] {
		errs = append(errs, c.Sessions.Prune())
	}
	if present[CategoryDirs] {
		errs = append(errs, c.Dirs.Prune())
	}
	if present[CategoryHistory] {
		errs = append(errs, history.Prune(c.HistoryFile))
	}
	if present[CategoryGit] && c.Root != "" && c.Runner != nil {
		if res := c.Runner.Run(ctx, c.Root, git.PruneArgs(false)...); !res.OK {
			errs = append(errs, fmt.Errorf("git worktree prune: %s", res.Text()))
		}
	}
	return errors.Join(errs...)
}

// Report writes issues grouped by category.
func Report(w io.Writer, issues []Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "✓ No issues found")
		return
	}

	byCategory := make(map[Category][]Issue)
	for _, i := range issues {
		byCategory[i.Category] = append(byCategory[i.Category], i)
	}
	for _, cat := range categoryOrder {
		list := byCategory[cat]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d):\n", cat, len(list))
		for _, i := range list {
			fmt.Fprintf(w, "  ⚠ %s: %s\n", i.Key, i.Description)
		}
	}
}
