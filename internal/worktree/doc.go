// Package worktree is the worktree registry for one workspace.
//
// A [Registry] answers "which worktrees exist" by running
// `git worktree list --porcelain` and caching the parsed result for a short
// TTL (5s by default). Two read paths are offered:
//
//   - [Registry.ListWorktrees] blocks on git when the cache is missing or
//     expired. Concurrent callers share a single git invocation.
//   - [Registry.CachedWorktrees] never waits. It returns whatever is cached
//     and schedules a refresh in the background when that is stale.
//
// Mutations ([Registry.CreateWorktree], [Registry.RemoveWorktree]) go
// through git and invalidate the cache before returning, so the next read
// observes the change. A refresh started before an invalidation never
// writes its result back.
//
// Dirty and unpushed checks ([Registry.HasUncommittedChanges],
// [Registry.HasUnpushedCommits]) always ask git; they are not cached.
//
// Blocking work runs through a [sched.Scheduler]. Callers on a foreground
// context (see [sched.WithExec]) have it moved to a background worker.
package worktree
