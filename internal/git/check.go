package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/metastacks/wtm/internal/cmd"
	"github.com/metastacks/wtm/internal/log"
)

// ErrGitNotFound indicates the configured git executable cannot be found.
var ErrGitNotFound = errors.New("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that the git executable at path (a name looked up in
// PATH or an absolute path) exists and runs. An empty path means "git".
func CheckGit(ctx context.Context, path string) error {
	if path == "" {
		path = "git"
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("%w (git_path = %q)", ErrGitNotFound, path)
	}
	out, err := cmd.OutputContext(ctx, "", path, "--version")
	if err != nil {
		return fmt.Errorf("%s --version: %w", path, err)
	}
	log.FromContext(ctx).Debug("git", "path", path, "version", strings.TrimSpace(string(out)))
	return nil
}
