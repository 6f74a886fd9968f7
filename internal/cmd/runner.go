package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/metastacks/wtm/internal/log"
)

// DefaultTimeout bounds every command started by Exec.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of a command run. On success Lines holds stdout,
// otherwise it holds stderr or a single line describing why the command
// could not complete.
type Result struct {
	OK    bool
	Lines []string
}

// Text joins the result lines with newlines.
func (r Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Empty reports whether the command produced no output lines.
func (r Result) Empty() bool {
	for _, l := range r.Lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// Runner runs the configured tool with args in dir.
// Implementations never return errors; failures are folded into Result.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) Result
}

// Exec is a Runner backed by os/exec.
type Exec struct {
	// Name is the executable to run, e.g. "git".
	Name string
	// Timeout bounds a single run. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewExec returns a Runner for the named executable.
func NewExec(name string, timeout time.Duration) *Exec {
	return &Exec{Name: name, Timeout: timeout}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, dir string, args ...string) Result {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, e.Name, args...)
	c.Dir = dir
	c.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	done := log.FromContext(ctx).Command(dir, e.Name, args...)
	start := time.Now()
	err := c.Run()
	done(time.Since(start))

	if err == nil {
		return Result{OK: true, Lines: SplitLines(stdout.String())}
	}

	invocation := strings.TrimSpace(e.Name + " " + strings.Join(args, " "))
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return failure(fmt.Sprintf("%s timed out after %s", invocation, timeout))
	case errors.Is(ctx.Err(), context.Canceled):
		return failure(fmt.Sprintf("%s cancelled", invocation))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if lines := SplitLines(stderr.String()); len(lines) > 0 {
			return Result{Lines: lines}
		}
		return failure(fmt.Sprintf("%s: %v", invocation, err))
	}
	return failure(fmt.Sprintf("failed to start %s: %v", e.Name, err))
}

func failure(line string) Result {
	return Result{Lines: []string{line}}
}

// SplitLines splits command output into lines, dropping the empty line
// produced by a trailing newline. Carriage returns are stripped.
func SplitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
