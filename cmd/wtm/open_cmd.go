package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/history"
	"github.com/metastacks/wtm/internal/hooks"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/tracker"
)

// errAlreadyOpen is returned when another session holds the worktree.
var errAlreadyOpen = errors.New("worktree is already open")

func newOpenCmd() *cobra.Command {
	var (
		shell string
		hf    hookFlags
	)

	cmd := &cobra.Command{
		Use:               "open [worktree]",
		Short:             "Open a shell in a worktree",
		GroupID:           GroupCore,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeTargets,
		Long: `Start a shell inside a worktree.

While the shell runs the worktree is registered as open: other wtm
processes see it in 'wtm sessions' and refuse to remove it. The
registration ends when the shell exits.

Without an argument the most recently opened worktree is used.
Hooks with on = ["open"] run before the shell starts.`,
		Example: `  wtm open feature-x            # Shell in feature-x
  wtm open                      # Back to the last opened worktree
  wtm open fix --shell zsh      # Use a specific shell`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			dir, arg := workDir, ""
			if len(args) > 0 {
				arg = args[0]
			} else {
				stateDir, err := stateDirFor(ctx)
				if err != nil {
					return err
				}
				recent, err := history.GetMostRecent(history.DefaultPath(stateDir))
				if err != nil {
					return err
				}
				if recent == "" {
					return fmt.Errorf("no worktree history (use wtm open <worktree> first)")
				}
				dir = recent
			}

			ws, err := openWorkspace(ctx, dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			wt, err := ws.target(ctx, arg)
			if err != nil {
				return err
			}
			if owner, ok := ws.tracker.Owner(wt.Path); ok {
				return fmt.Errorf("%w: %s (%s)", errAlreadyOpen, wt.Path, owner)
			}

			mainRepo, _ := ws.reg.MainRepositoryPath(ctx)
			if err := history.RecordAccess(wt.Path, git.RepoName(mainRepo), wt.Branch, ws.historyPath()); err != nil {
				l.Warn("failed to record history", "err", err)
			}
			if err := hf.run(ctx, ws, hooks.TriggerOpen, wt, mainRepo, wt.Path); err != nil {
				return err
			}

			return runSession(ctx, ws, wt, shellCommand(shell))
		},
	}

	cmd.Flags().StringVar(&shell, "shell", "", "Shell to start (default $SHELL)")
	hf.register(cmd)

	return cmd
}

// shellCommand returns the shell to run: the flag, $SHELL or /bin/sh.
func shellCommand(flag string) string {
	if flag != "" {
		return flag
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}

// runSession starts shell in wt and keeps wt registered as open until the
// shell exits.
func runSession(ctx context.Context, ws *workspace, wt git.Worktree, shell string) error {
	l := log.FromContext(ctx)

	c := exec.Command(shell)
	c.Dir = wt.Path
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	c.Env = append(os.Environ(), "WTM_WORKTREE="+wt.Path, "WTM_BRANCH="+wt.Branch)
	if err := c.Start(); err != nil {
		return fmt.Errorf("start %s: %w", shell, err)
	}

	// Open until Wait returns. An unreaped shell still answers kill(pid, 0).
	pid := c.Process.Pid
	session := tracker.NewSession(fmt.Sprintf("%s (pid %d)", filepath.Base(shell), pid))
	ws.tracker.Register(wt.Path, session)
	if err := ws.sessions.Add(tracker.Session{Path: wt.Path, PID: pid}); err != nil {
		l.Warn("failed to persist session", "err", err)
	}
	l.Printf("Opened %s (exit the shell to close)\n", wt.DisplayName())

	err := c.Wait()

	session.End()
	ws.tracker.Unregister(wt.Path)
	if rmErr := ws.sessions.Remove(wt.Path, pid); rmErr != nil {
		l.Warn("failed to remove session", "err", rmErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The shell's own exit status is not a wtm failure.
		l.Debug("shell exited", "code", exitErr.ExitCode())
		return nil
	}
	return err
}
