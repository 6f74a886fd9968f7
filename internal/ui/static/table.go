// Package static renders non-interactive terminal output such as the
// worktree table printed by `wtm list`.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/metastacks/wtm/internal/git"
	"github.com/metastacks/wtm/internal/ui/styles"
)

// WorktreeHeaders are the columns produced by WorktreeTableRow.
var WorktreeHeaders = []string{"", "BRANCH", "COMMIT", "PATH"}

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// WorktreeTableRow returns the table cells for wt. Detached worktrees show
// their directory name, muted. current and open add the corresponding
// markers.
func WorktreeTableRow(wt git.Worktree, current, open bool) []string {
	branch := wt.DisplayName()
	if wt.Detached() {
		branch = styles.MutedStyle.Render("(" + branch + ")")
	} else if current {
		branch = styles.AccentStyle.Render(branch)
	}

	status := styles.FormatStatus(styles.Status{
		Main:     wt.IsMain,
		Current:  current,
		Dirty:    wt.IsDirty,
		Unpushed: wt.HasUnpushedCommits,
		Open:     open,
	})

	return []string{status, branch, wt.ShortHash(), wt.Path}
}
