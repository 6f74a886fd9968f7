package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/history"
	"github.com/metastacks/wtm/internal/hooks"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/safety"
)

var (
	// errRemoveMain is returned when asked to remove the main checkout.
	errRemoveMain = errors.New("cannot remove the main checkout")
	// errGuessForced is returned for a fuzzy target combined with --force.
	errGuessForced = errors.New("not an exact worktree name")
)

func newRemoveCmd() *cobra.Command {
	var (
		force bool
		hf    hookFlags
	)

	cmd := &cobra.Command{
		Use:               "remove <worktree>...",
		Short:             "Remove worktrees",
		Aliases:           []string{"rm"},
		GroupID:           GroupCore,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeTargets,
		Long: `Remove one or more worktrees.

A worktree can be named by path, branch, directory name or a fuzzy
match of its name. A fuzzy match is only removed after confirming it;
with --force the exact name is required. Before removing, wtm asks for confirmation if the
worktree has uncommitted changes or commits not pushed to its upstream.
If git refuses the removal, wtm offers to force it.

A worktree open in a 'wtm open' session is never removed.`,
		Example: `  wtm remove feature-x        # Remove by branch
  wtm rm ../fix other         # Several at once
  wtm rm -f feature-x         # Skip confirmation, force if needed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			mainRepo, ok := ws.reg.MainRepositoryPath(ctx)
			if !ok {
				return fmt.Errorf("cannot determine main checkout of %s", ws.dir)
			}

			policy := ws.policy(force)
			var errs []error
			for _, arg := range args {
				wt, err := removeTarget(ctx, ws, policy, force, arg)
				if err != nil {
					if errors.Is(err, safety.ErrDeclined) {
						l.Printf("Skipped: %s\n", wt.Path)
						continue
					}
					if wt.Path == "" {
						errs = append(errs, err)
						continue
					}
					errs = append(errs, fmt.Errorf("%s: %w", wt.DisplayName(), err))
					continue
				}
				l.Printf("Removed: %s\n", wt.Path)

				if err := hf.run(ctx, ws, hooks.TriggerRemove, wt, mainRepo, mainRepo); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove without confirmation, forcing git if needed")
	hf.register(cmd)

	return cmd
}

// removeTarget resolves arg and removes the worktree it names. A fuzzy
// match needs confirmation, and is refused outright when force answers
// every prompt. The returned worktree is empty if arg did not resolve.
func removeTarget(ctx context.Context, ws *workspace, policy *safety.Policy, force bool, arg string) (git.Worktree, error) {
	m, err := ws.find(ctx, arg)
	if err != nil {
		return git.Worktree{}, err
	}
	if m.Fuzzy {
		if force {
			return m.Worktree, fmt.Errorf("%q is %w (matches %s), name it exactly to use --force", arg, errGuessForced, m.Path)
		}
		if err := policy.ConfirmGuess(ctx, arg, m.Path); err != nil {
			return m.Worktree, err
		}
	}
	return m.Worktree, removeOne(ctx, ws, policy, m.Worktree)
}

// removeOne removes wt through the safety policy and forgets its history.
func removeOne(ctx context.Context, ws *workspace, policy *safety.Policy, wt git.Worktree) error {
	if wt.IsMain {
		return errRemoveMain
	}
	if err := policy.Remove(ctx, wt.Path, ws.reg); err != nil {
		return err
	}
	if err := history.Forget(wt.Path, ws.historyPath()); err != nil {
		log.FromContext(ctx).Warn("failed to update history", "err", err)
	}
	return nil
}
