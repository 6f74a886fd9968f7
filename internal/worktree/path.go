package worktree

import (
	"os"
	"path/filepath"
	"strings"
)

var branchReplacer = strings.NewReplacer("/", "-", `\`, "-", " ", "-")

// SanitizeBranch turns a branch name into a single directory name by
// replacing path separators and spaces with dashes.
func SanitizeBranch(branch string) string {
	return branchReplacer.Replace(branch)
}

// DefaultPath computes where the worktree for branch goes.
// dir is the configured worktree directory:
//   - ".worktrees" or "./wt" = nested inside the main checkout
//   - "../worktrees" = next to the main checkout
//   - "~/worktrees/{repo}" = centralized folder, {repo} is the main checkout's name
//   - "/absolute/worktrees" = absolute path
func DefaultPath(mainRepo, dir, branch string) string {
	name := SanitizeBranch(branch)
	dir = strings.ReplaceAll(dir, "{repo}", filepath.Base(mainRepo))

	switch {
	case dir == "~" || strings.HasPrefix(dir, "~/"):
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			// Keep the ~ so the error surfaces when git creates the path.
			return filepath.Join(dir, name)
		}
		return filepath.Join(home, strings.TrimPrefix(dir[1:], "/"), name)

	case filepath.IsAbs(dir):
		return filepath.Join(dir, name)

	default:
		return filepath.Join(mainRepo, dir, name)
	}
}
