package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// LockSuffix is appended to a state file's path to name its lock file.
const LockSuffix = ".lock"

// FileLock is an exclusive flock on a lock file. The zero value is unusable;
// create one with NewFileLock.
type FileLock struct {
	path string
	f    *os.File
}

// NewFileLock returns an unlocked FileLock on path. The file is created on
// the first Lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Lock blocks until the lock is held.
func (l *FileLock) Lock() error {
	if l.f != nil {
		return fmt.Errorf("lock %s: already held", l.path)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return err
	}
	l.f = f
	return nil
}

// Unlock releases the lock. Unlocking a lock that is not held is a no-op.
func (l *FileLock) Unlock() error {
	f := l.f
	if f == nil {
		return nil
	}
	l.f = nil
	unlockErr := syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	closeErr := f.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

// Locked runs fn while holding the lock for the state file at path,
// creating the file's directory first.
func Locked(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	lock := NewFileLock(path + LockSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", filepath.Base(path), err)
	}
	defer lock.Unlock()
	return fn()
}
