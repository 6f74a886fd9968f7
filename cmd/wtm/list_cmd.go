package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/output"
	"github.com/metastacks/wtm/internal/resolve"
	"github.com/metastacks/wtm/internal/tracker"
	"github.com/metastacks/wtm/internal/ui/static"
)

// worktreeDisplay is the structured form of a listed worktree.
type worktreeDisplay struct {
	git.Worktree `yaml:",inline"`
	Name         string `json:"name" yaml:"name"`
	Current      bool   `json:"current" yaml:"current"`
	Open         bool   `json:"open" yaml:"open"`
}

func newListCmd() *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List worktrees",
		Aliases: []string{"ls"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `List the worktrees of the current repository.

Markers: → current, ● main checkout, ✎ uncommitted changes,
↑ unpushed commits, ◉ open in a wtm session.`,
		Example: `  wtm list          # Table of worktrees
  wtm list --json   # Output as JSON
  wtm list --yaml   # Output as YAML`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			list, err := ws.reg.ListWorktrees(ctx)
			if err != nil {
				return err
			}
			log.FromContext(ctx).Debug("listed worktrees", "count", len(list))

			rows := displayRows(list, ws.dir, ws.tracker)
			switch {
			case jsonOutput:
				return out.Encode(output.FormatJSON, rows)
			case yamlOutput:
				return out.Encode(output.FormatYAML, rows)
			}
			return writeTable(out.Writer(), rows)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}

// displayRows marks the worktree containing dir and those open in a session.
func displayRows(list []git.Worktree, dir string, open *tracker.Tracker) []worktreeDisplay {
	current, hasCurrent := resolve.Current(list, dir)
	rows := make([]worktreeDisplay, 0, len(list))
	for _, wt := range list {
		rows = append(rows, worktreeDisplay{
			Worktree: wt,
			Name:     wt.DisplayName(),
			Current:  hasCurrent && wt.Path == current.Path,
			Open:     open.IsOpen(wt.Path),
		})
	}
	return rows
}

// writeTable renders rows as a table, downsampling colors for w.
func writeTable(w io.Writer, rows []worktreeDisplay) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No worktrees found")
		return err
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, static.WorktreeTableRow(r.Worktree, r.Current, r.Open))
	}
	_, err := lipgloss.Fprint(w, static.RenderTable(static.WorktreeHeaders, cells))
	return err
}

// completeTargets completes worktree names of the current repository.
func completeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	dir := workDir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	ws, err := openWorkspace(ctx, dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer ws.Close()

	list, err := ws.reg.ListWorktrees(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(list))
	for _, wt := range list {
		names = append(names, wt.DisplayName())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
