package git

import (
	"path/filepath"
	"strings"
)

// Worktree is one checkout reported by `git worktree list --porcelain`.
//
// Values are immutable once built: the parser creates fresh records on every
// listing and enrichment builds new values via WithStatus.
type Worktree struct {
	Path               string `json:"path" yaml:"path"`
	Branch             string `json:"branch,omitempty" yaml:"branch,omitempty"`
	CommitHash         string `json:"commit" yaml:"commit"`
	IsMain             bool   `json:"main" yaml:"main"`
	IsDirty            bool   `json:"dirty" yaml:"dirty"`
	HasUnpushedCommits bool   `json:"unpushed" yaml:"unpushed"`
}

// Detached reports whether the worktree has no branch checked out.
func (w Worktree) Detached() bool {
	return w.Branch == ""
}

// DisplayName returns the branch name, or the last path segment for a
// detached worktree. Both / and \ are treated as separators.
func (w Worktree) DisplayName() string {
	if w.Branch != "" {
		return w.Branch
	}
	p := strings.TrimRight(w.Path, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ShortHash returns the first 7 characters of the commit hash.
func (w Worktree) ShortHash() string {
	if len(w.CommitHash) <= 7 {
		return w.CommitHash
	}
	return w.CommitHash[:7]
}

// WithStatus returns a copy of w with the dirty and unpushed flags set.
func (w Worktree) WithStatus(dirty, unpushed bool) Worktree {
	w.IsDirty = dirty
	w.HasUnpushedCommits = unpushed
	return w
}

// NormalizePath returns an absolute, cleaned form of p with symlinks
// resolved when the path exists. Worktree paths are compared in this form.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Clean(p)
}

// SamePath reports whether a and b refer to the same location.
func SamePath(a, b string) bool {
	return NormalizePath(a) == NormalizePath(b)
}
