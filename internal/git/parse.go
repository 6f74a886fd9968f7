package git

import "strings"

// porcelain block being assembled by ParseWorktreeList
type block struct {
	path   string
	branch string
	hash   string
	bare   bool
}

// ParseWorktreeList converts `git worktree list --porcelain` output into
// worktree records, in input order.
//
// Blocks without a HEAD line (a bare repository entry) are dropped. A block
// marked `bare` is the main worktree; otherwise the first record emitted is.
// Unknown attribute lines such as detached, locked and prunable are ignored,
// as are blank separator lines.
func ParseWorktreeList(lines []string) []Worktree {
	var (
		out  []Worktree
		bare []bool
		cur  block
	)

	emit := func(b block) {
		if b.hash == "" {
			return
		}
		out = append(out, Worktree{
			Path:       b.path,
			Branch:     b.branch,
			CommitHash: b.hash,
		})
		bare = append(bare, b.bare)
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "worktree "):
			emit(cur)
			cur = block{path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD "):
			cur.hash = strings.TrimSpace(strings.TrimPrefix(line, "HEAD "))
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimSpace(strings.TrimPrefix(line, "branch "))
			cur.branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "bare":
			cur.bare = true
		}
	}
	emit(cur)

	if len(out) == 0 {
		return nil
	}

	explicit := false
	for i := range out {
		if bare[i] && !explicit {
			out[i].IsMain = true
			explicit = true
		}
	}
	if !explicit {
		out[0].IsMain = true
	}
	return out
}
