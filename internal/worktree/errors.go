package worktree

import (
	"errors"
	"strings"
)

// Precondition failures, reported before git is invoked.
var (
	ErrNoRepository = errors.New("no git repository for this workspace")
	ErrTargetExists = errors.New("target path already exists")
	ErrEmptyBranch  = errors.New("branch name is required")
)

// ErrInfoUnavailable is returned when git created a worktree but the
// following listing does not contain it.
var ErrInfoUnavailable = errors.New("worktree created but info unavailable")

// ToolError is a failed git invocation. Its message is git's own output.
type ToolError struct {
	Args  []string
	Lines []string
}

func (e *ToolError) Error() string {
	if msg := strings.TrimSpace(strings.Join(e.Lines, "\n")); msg != "" {
		return msg
	}
	return "git " + strings.Join(e.Args, " ") + " failed"
}
