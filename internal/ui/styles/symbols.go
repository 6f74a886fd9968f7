package styles

import "strings"

// Symbols used in the worktree listing.
const (
	SymbolMain     = "●"
	SymbolCurrent  = "→"
	SymbolDirty    = "✎"
	SymbolUnpushed = "↑"
	SymbolOpen     = "◉"
)

// Status describes the markers shown next to a worktree.
type Status struct {
	Main     bool
	Current  bool
	Dirty    bool
	Unpushed bool
	Open     bool
}

// FormatStatus renders the markers for s, styled, separated by spaces.
// Returns an empty string when no marker applies.
func FormatStatus(s Status) string {
	var parts []string
	if s.Current {
		parts = append(parts, AccentStyle.Render(SymbolCurrent))
	}
	if s.Main {
		parts = append(parts, PrimaryStyle.Render(SymbolMain))
	}
	if s.Dirty {
		parts = append(parts, WarningStyle.Render(SymbolDirty))
	}
	if s.Unpushed {
		parts = append(parts, SuccessStyle.Render(SymbolUnpushed))
	}
	if s.Open {
		parts = append(parts, ErrorStyle.Render(SymbolOpen))
	}
	return strings.Join(parts, " ")
}
