// Package cache provides the in-memory cache slot used by the worktree
// registry and the file lock guarding shared state files in ~/.wtm/.
//
// # Slot
//
// A [Slot] holds a single [Entry]: a value plus the time it was cached.
// Entries are never mutated; Store swaps in a new pointer, so a reader
// racing a refresh observes a complete (value, time) pair. Expiry is lazy:
// callers ask [Slot.Fresh] with their TTL and decide whether to refresh.
//
// # Locking
//
// [Locked] serialises read-modify-write cycles on JSON files shared between
// wtm processes (sessions, directory associations, history) through a
// [FileLock] on a sibling "<file>.lock". It uses flock, so the lock is
// released automatically if the process dies.
package cache
