package tracker

import (
	"errors"
	"fmt"
	"sync/atomic"
	"syscall"
)

// ProcessHandle is a session owned by an operating system process.
type ProcessHandle struct {
	PID int
}

// Alive reports whether the process still exists.
func (h ProcessHandle) Alive() bool {
	return pidAlive(h.PID)
}

func (h ProcessHandle) String() string {
	return fmt.Sprintf("pid %d", h.PID)
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	// EPERM: the process exists but belongs to someone else.
	return errors.Is(err, syscall.EPERM)
}

// SessionHandle is an in-process session ended explicitly with End.
type SessionHandle struct {
	name  string
	ended atomic.Bool
}

// NewSession returns a live session handle.
func NewSession(name string) *SessionHandle {
	return &SessionHandle{name: name}
}

// Alive reports whether End has not been called yet.
func (s *SessionHandle) Alive() bool {
	return !s.ended.Load()
}

// End marks the session terminated.
func (s *SessionHandle) End() {
	s.ended.Store(true)
}

func (s *SessionHandle) String() string {
	return s.name
}
