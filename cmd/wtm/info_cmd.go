package main

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/output"
	"github.com/metastacks/wtm/internal/ui/styles"
)

func newInfoCmd() *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:               "info [worktree]",
		Short:             "Show details of a worktree",
		GroupID:           GroupUtility,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeTargets,
		Long: `Show the branch, commit and status of a worktree.

Without an argument the worktree containing the current directory is
shown.`,
		Example: `  wtm info               # Current worktree
  wtm info feature-x     # By branch
  wtm info --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			wt, err := ws.target(ctx, arg)
			if err != nil {
				return err
			}
			if fresh, ok := ws.reg.WorktreeInfo(ctx, wt.Path); ok {
				wt = fresh
			}

			d := displayRows([]git.Worktree{wt}, ws.dir, ws.tracker)[0]

			switch {
			case jsonOutput:
				return out.Encode(output.FormatJSON, d)
			case yamlOutput:
				return out.Encode(output.FormatYAML, d)
			}
			return writeInfo(out.Writer(), d)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}

func writeInfo(w io.Writer, d worktreeDisplay) error {
	branch := d.Branch
	if d.Detached() {
		branch = styles.MutedStyle.Render("(detached)")
	}
	label := styles.MutedStyle
	lines := []struct{ k, v string }{
		{"Name", styles.Bold.Render(d.Name)},
		{"Branch", branch},
		{"Path", d.Path},
		{"Commit", d.CommitHash},
		{"Main", yesNo(d.IsMain)},
		{"Dirty", yesNo(d.IsDirty)},
		{"Unpushed", yesNo(d.HasUnpushedCommits)},
		{"Open", yesNo(d.Open)},
	}
	for _, line := range lines {
		if _, err := lipgloss.Fprintf(w, "%s %s\n", label.Render(fmt.Sprintf("%-9s", line.k+":")), line.v); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
