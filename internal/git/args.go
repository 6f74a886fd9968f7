package git

// UpstreamRange is the revision range for commits not yet on the upstream.
const UpstreamRange = "@{u}..HEAD"

// ListArgs returns the arguments for a porcelain worktree listing.
func ListArgs() []string {
	return []string{"worktree", "list", "--porcelain"}
}

// AddArgs returns the arguments to create a worktree at path. With
// createBranch a new branch is created from HEAD, otherwise the existing
// branch is checked out.
func AddArgs(branch, path string, createBranch bool) []string {
	if createBranch {
		return []string{"worktree", "add", "-b", branch, path}
	}
	return []string{"worktree", "add", path, branch}
}

// RemoveArgs returns the arguments to remove the worktree at path.
func RemoveArgs(path string, force bool) []string {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	return append(args, path)
}

// StatusArgs returns the arguments for a porcelain working tree status.
func StatusArgs() []string {
	return []string{"status", "--porcelain"}
}

// UnpushedArgs returns the arguments listing commits not on the upstream.
func UnpushedArgs() []string {
	return []string{"log", UpstreamRange, "--oneline"}
}

// IgnoredArgs returns the arguments listing untracked files matched by
// the ignore rules, one file per line.
func IgnoredArgs() []string {
	return []string{"ls-files", "--others", "--ignored", "--exclude-standard"}
}

// PruneArgs returns the arguments that drop administrative files of
// worktrees whose directory is gone. With dryRun nothing is removed and
// each stale worktree is reported on its own line.
func PruneArgs(dryRun bool) []string {
	if dryRun {
		return []string{"worktree", "prune", "--dry-run", "--verbose"}
	}
	return []string{"worktree", "prune"}
}

// CommonDirArgs returns the arguments that print the git common directory.
func CommonDirArgs() []string {
	return []string{"rev-parse", "--git-common-dir"}
}
