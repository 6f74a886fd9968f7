package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/metastacks/wtm/internal/git"
)

var (
	// ErrNotFound means no worktree matches the target.
	ErrNotFound = errors.New("no worktree matches")
	// ErrAmbiguous means several worktrees match a fuzzy target.
	ErrAmbiguous = errors.New("target is ambiguous")
)

// maxCandidates bounds the names listed in an ambiguity error.
const maxCandidates = 5

// worktreeSource implements fuzzy.Source over display names.
type worktreeSource []git.Worktree

func (s worktreeSource) String(i int) string { return s[i].DisplayName() }
func (s worktreeSource) Len() int            { return len(s) }

// Match is a resolved target. Fuzzy is set when no path, branch or name
// matched exactly and the worktree was picked by fuzzy matching.
type Match struct {
	git.Worktree
	Fuzzy bool
}

// Target resolves target against list. cwd anchors relative paths.
func Target(list []git.Worktree, target, cwd string) (git.Worktree, error) {
	m, err := Find(list, target, cwd)
	return m.Worktree, err
}

// Find resolves target like Target and reports how it matched. Commands
// that destroy their target must not act on a fuzzy match unconfirmed.
func Find(list []git.Worktree, target, cwd string) (Match, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Match{}, fmt.Errorf("%w: empty target", ErrNotFound)
	}

	if looksLikePath(target) {
		p := target
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		for _, wt := range list {
			if git.SamePath(wt.Path, p) {
				return Match{Worktree: wt}, nil
			}
		}
		return Match{}, fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	for _, wt := range list {
		if wt.Branch == target {
			return Match{Worktree: wt}, nil
		}
	}
	for _, wt := range list {
		if wt.DisplayName() == target || filepath.Base(wt.Path) == target {
			return Match{Worktree: wt}, nil
		}
	}

	matches := fuzzy.FindFrom(target, worktreeSource(list))
	switch {
	case len(matches) == 0:
		return Match{}, fmt.Errorf("%w %q", ErrNotFound, target)
	case len(matches) == 1 || matches[0].Score > matches[1].Score:
		return Match{Worktree: list[matches[0].Index], Fuzzy: true}, nil
	}

	names := make([]string, 0, maxCandidates)
	for i, m := range matches {
		if i == maxCandidates {
			names = append(names, "...")
			break
		}
		names = append(names, m.Str)
	}
	return Match{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguous, target, strings.Join(names, ", "))
}

// Current returns the worktree containing dir. When worktrees are nested
// (the default .worktrees layout) the deepest one wins.
func Current(list []git.Worktree, dir string) (git.Worktree, bool) {
	dir = git.NormalizePath(dir)
	var best git.Worktree
	found := false
	for _, wt := range list {
		p := git.NormalizePath(wt.Path)
		if !within(dir, p) {
			continue
		}
		if !found || len(p) > len(git.NormalizePath(best.Path)) {
			best, found = wt, true
		}
	}
	return best, found
}

func within(p, root string) bool {
	if p == root {
		return true
	}
	return strings.HasPrefix(p, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}

// looksLikePath reports whether s is a path rather than a name. Relative
// paths need a leading "." since feature/x is a branch name.
func looksLikePath(s string) bool {
	return filepath.IsAbs(s) || strings.HasPrefix(s, ".")
}
