// Package sched separates work that must never block the caller from work
// that may.
//
// Callers declare the execution context they run on with [WithExec]. Code
// on a [Foreground] context (a render loop, an event handler) must not run
// blocking operations itself; [Scheduler.Do] hands such work to a
// background worker and waits for it on a channel. Code already on a
// [Background] context runs the work inline.
package sched

import (
	"context"
	"errors"
	"sync"
)

// Exec identifies the execution context a caller runs on.
type Exec int

const (
	// Background callers may block. This is the default.
	Background Exec = iota
	// Foreground callers must not block on external processes.
	Foreground
)

func (e Exec) String() string {
	if e == Foreground {
		return "foreground"
	}
	return "background"
}

type execKey struct{}

// WithExec declares the execution context of the code receiving ctx.
func WithExec(ctx context.Context, e Exec) context.Context {
	return context.WithValue(ctx, execKey{}, e)
}

// ExecFrom returns the declared execution context, Background if none.
func ExecFrom(ctx context.Context) Exec {
	if e, ok := ctx.Value(execKey{}).(Exec); ok {
		return e
	}
	return Background
}

// ErrClosed is returned when work is submitted after Close.
var ErrClosed = errors.New("scheduler closed")

// DefaultWorkers bounds concurrent background work.
const DefaultWorkers = 4

// Scheduler runs background work on a bounded set of goroutines.
type Scheduler struct {
	sem chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New returns a Scheduler running at most workers tasks at once.
func New(workers int) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{sem: make(chan struct{}, workers)}
}

// Do runs fn to completion and returns its error. On a Foreground context
// fn runs on a background worker with a Background context; otherwise it
// runs inline. Cancelling ctx stops the wait but not fn.
func (s *Scheduler) Do(ctx context.Context, fn func(context.Context) error) error {
	if ExecFrom(ctx) != Foreground {
		return fn(ctx)
	}

	done := make(chan error, 1)
	if err := s.spawn(ctx, func(bg context.Context) { done <- fn(bg) }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go dispatches fn to a background worker without waiting for it.
func (s *Scheduler) Go(ctx context.Context, fn func(context.Context)) error {
	return s.spawn(ctx, fn)
}

func (s *Scheduler) spawn(ctx context.Context, fn func(context.Context)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	bg := WithExec(context.WithoutCancel(ctx), Background)
	go func() {
		defer s.wg.Done()
		s.sem <- struct{}{}
		defer func() { <-s.sem }()
		fn(bg)
	}()
	return nil
}

// Close stops accepting work and waits for dispatched work to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}
