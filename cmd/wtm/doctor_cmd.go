package main

import (
	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/doctor"
	"github.com/metastacks/wtm/internal/output"
)

func newDoctorCmd() *cobra.Command {
	var fix, jsonOutput bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Find and repair stale wtm state",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `Check the state files in the state directory for sessions of exited
shells, directory associations and history entries of deleted worktrees.
Inside a repository, also report worktrees git would prune.

With --fix the reported issues are repaired.`,
		Example: `  wtm doctor        # report issues
  wtm doctor --fix  # repair them`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			checker := ws.checker()
			issues, err := checker.Check(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				if issues == nil {
					issues = []doctor.Issue{}
				}
				return out.Encode(output.FormatJSON, issues)
			}
			doctor.Report(out.Writer(), issues)
			if !fix || len(issues) == 0 {
				return nil
			}
			if err := checker.Fix(ctx, issues); err != nil {
				return err
			}
			out.Printf("✓ Fixed %d issue(s)\n", len(issues))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Repair the reported issues")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output issues as JSON")
	cmd.MarkFlagsMutuallyExclusive("fix", "json")

	return cmd
}

// checker returns a doctor for the workspace's state and repository.
func (ws *workspace) checker() *doctor.Checker {
	return &doctor.Checker{
		Sessions:    ws.sessions,
		Dirs:        ws.dirs,
		HistoryFile: ws.historyPath(),
		Runner:      ws.runner,
		Root:        ws.reg.Root(),
	}
}
