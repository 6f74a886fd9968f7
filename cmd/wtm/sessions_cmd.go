package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/metastacks/wtm/internal/output"
	"github.com/metastacks/wtm/internal/ui/static"
)

func newSessionsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "sessions",
		Short:   "List worktrees open in a wtm session",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `List the worktrees currently opened with 'wtm open', across all
repositories. Sessions whose shell has exited are dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, workDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			sessions, err := ws.sessions.Sessions()
			if err != nil {
				return err
			}
			if jsonOutput {
				return out.Encode(output.FormatJSON, sessions)
			}
			if len(sessions) == 0 {
				out.Println("No open sessions")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{s.Path, strconv.Itoa(s.PID), s.Started.Format(time.DateTime)})
			}
			out.Print(static.RenderTable([]string{"PATH", "PID", "STARTED"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
