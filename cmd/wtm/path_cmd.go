package main

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/output"
)

func newPathCmd() *cobra.Command {
	var (
		copyToClipboard bool
		create          bool
	)

	cmd := &cobra.Command{
		Use:               "path <worktree>",
		Short:             "Print a worktree path for shell scripting",
		GroupID:           GroupUtility,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTargets,
		Long: `Print the path of a worktree.

Use with shell command substitution: cd $(wtm path feature-x)

With --default the argument is taken as a branch name and the location
a new worktree for it would get is printed instead.`,
		Example: `  cd $(wtm path feature-x)       # cd into a worktree
  wtm path --copy feature-x      # Copy path to clipboard
  wtm path --default feature-y   # Where 'wtm add feature-y' would go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			var path string
			if create {
				path, err = addTarget(ctx, ws, args[0], nil)
			} else {
				wt, terr := ws.target(ctx, args[0])
				path, err = wt.Path, terr
			}
			if err != nil {
				return err
			}

			if copyToClipboard {
				if err := clipboard.WriteAll(path); err != nil {
					log.FromContext(ctx).Warn("failed to copy to clipboard", "err", err)
				}
			}

			out.Println(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy path to clipboard")
	cmd.Flags().BoolVar(&create, "default", false, "Print the default location for a new worktree of this branch")

	return cmd
}
