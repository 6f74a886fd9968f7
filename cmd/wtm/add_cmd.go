package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/hooks"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/output"
	"github.com/metastacks/wtm/internal/preserve"
	"github.com/metastacks/wtm/internal/ui/progress"
)

// hookFlags are the hook options shared by commands that run hooks.
type hookFlags struct {
	hook   string
	noHook bool
	args   []string
	dryRun bool
}

func (f *hookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.hook, "hook", "", "Run only this hook")
	cmd.Flags().BoolVar(&f.noHook, "no-hook", false, "Skip hooks")
	cmd.Flags().StringArrayVarP(&f.args, "arg", "a", nil, "Set a hook placeholder: key=value (value - reads stdin)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run-hooks", false, "Print hook commands instead of running them")
	cmd.MarkFlagsMutuallyExclusive("hook", "no-hook")
}

// run selects and runs the hooks for trigger in dir. A hook named with
// --hook was asked for explicitly, so its failure is returned. Hooks
// selected by trigger only log failures; the operation that triggered them
// already succeeded.
func (f *hookFlags) run(ctx context.Context, ws *workspace, trigger hooks.Trigger, wt git.Worktree, mainRepo, dir string) error {
	matches, err := hooks.Select(ws.cfg.Hooks, f.hook, f.noHook, trigger)
	if err != nil || len(matches) == 0 {
		return err
	}
	env, err := hooks.ParseArgs(f.args, hooks.PipedStdin())
	if err != nil {
		return err
	}
	hctx := hooks.NewContext(trigger, wt.Path, wt.Branch, mainRepo, env)
	hctx.DryRun = f.dryRun

	runner := &hooks.Runner{}
	if f.hook != "" {
		return runner.RunAll(ctx, matches, hctx, dir)
	}
	runner.RunAllNonFatal(ctx, matches, hctx, dir)
	return nil
}

func newAddCmd() *cobra.Command {
	var (
		newBranch  bool
		noPreserve bool
		hf         hookFlags
	)

	cmd := &cobra.Command{
		Use:     "add <branch> [path]",
		Short:   "Create a worktree",
		GroupID: GroupCore,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Create a worktree for a branch.

Without a path the worktree is created in the configured worktree
directory (worktree_dir, default .worktrees inside the main checkout),
named after the branch. Use -b to create the branch from HEAD.

Git-ignored files matching the [preserve] patterns (for example .env)
are copied from the main checkout into the new worktree.

Hooks with on = ["add"] run in the new worktree afterwards.`,
		Example: `  wtm add feature-x                # Check out existing branch
  wtm add -b feature-y             # Create a new branch
  wtm add -b fix ../fix            # Custom location
  wtm add -b x --hook setup        # Run only the "setup" hook
  wtm add -b x -a ticket=ABC-1     # Pass a value to hooks`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			branch := args[0]
			mainRepo, ok := ws.reg.MainRepositoryPath(ctx)
			if !ok {
				return fmt.Errorf("cannot determine main checkout of %s", ws.dir)
			}

			target, err := addTarget(ctx, ws, branch, args[1:])
			if err != nil {
				return err
			}

			var wt git.Worktree
			err = progress.Run(fmt.Sprintf("Creating worktree for %s...", branch), func() error {
				wt, err = ws.reg.CreateWorktree(ctx, branch, target, newBranch)
				return err
			})
			if err != nil {
				return err
			}
			l.Printf("Created worktree: %s (%s)\n", wt.Path, wt.DisplayName())

			if !noPreserve {
				preserveFiles(ctx, ws, mainRepo, wt.Path)
			}

			if err := hf.run(ctx, ws, hooks.TriggerAdd, wt, mainRepo, wt.Path); err != nil {
				return err
			}

			out.Println(wt.Path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&newBranch, "new-branch", "b", false, "Create a new branch")
	cmd.Flags().BoolVar(&noPreserve, "no-preserve", false, "Don't copy preserved files into the new worktree")
	hf.register(cmd)

	return cmd
}

// addTarget returns the explicit path argument made absolute, or the
// default location for branch.
func addTarget(ctx context.Context, ws *workspace, branch string, rest []string) (string, error) {
	if len(rest) > 0 {
		if filepath.IsAbs(rest[0]) {
			return filepath.Clean(rest[0]), nil
		}
		return filepath.Join(ws.dir, rest[0]), nil
	}
	target, ok := ws.reg.DefaultWorktreePath(ctx, branch)
	if !ok {
		return "", fmt.Errorf("cannot determine a location for %s", branch)
	}
	return target, nil
}

// preserveFiles copies the configured ignored files from the main checkout
// into a new worktree. Failures are logged, not returned.
func preserveFiles(ctx context.Context, ws *workspace, mainRepo, target string) {
	l := log.FromContext(ctx)
	c := &preserve.Copier{
		Runner: ws.runner,
		Config: ws.cfg.Preserve,
	}
	copied, err := c.Copy(ctx, mainRepo, target)
	if err != nil {
		l.Warn("failed to preserve files", "err", err)
		return
	}
	for _, f := range copied {
		l.Debug("preserved", "file", f)
	}
	if len(copied) > 0 {
		l.Printf("Preserved %d file(s) from %s\n", len(copied), mainRepo)
	}
}
