// Package cmd runs external commands.
//
// [Runner] is the seam the worktree registry uses to talk to git: every run
// is bounded by a timeout and collapses all failures (non-zero exit, spawn
// error, timeout) into a [Result] instead of an error, so callers branch on
// Result.OK and show Result.Lines to the user verbatim.
//
//	r := cmd.NewExec("git", cmd.DefaultTimeout)
//	res := r.Run(ctx, repoDir, "worktree", "list", "--porcelain")
//	if !res.OK {
//	    return fmt.Errorf("%s", res.Text())
//	}
//
// [OutputContext] is the error-returning helper for one-off commands such
// as the startup git check. It folds stderr into the error text.
//
// Commands are echoed through the context logger in verbose mode.
package cmd
