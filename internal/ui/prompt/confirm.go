package prompt

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"

	"github.com/metastacks/wtm/internal/ui/styles"
)

// ConfirmResult holds the result of a confirmation prompt.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

type confirmModel struct {
	prompt    string
	confirmed bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "enter":
		// enter takes the default, which is no
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "q", "esc":
		m.cancelled = true
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m confirmModel) render() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s ", m.prompt, styles.MutedStyle.Render("[y/N]"))
}

// Confirm shows a yes/no prompt on stderr and returns the user's choice.
// The default answer is no. Cancelling ctx aborts the prompt.
func Confirm(ctx context.Context, prompt string) (ConfirmResult, error) {
	return run(ctx, prompt, os.Stderr)
}

func run(ctx context.Context, prompt string, out io.Writer) (ConfirmResult, error) {
	p := tea.NewProgram(confirmModel{prompt: prompt},
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithColorProfile(colorprofile.Detect(out, os.Environ())),
	)
	final, err := p.Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	m := final.(confirmModel)
	return ConfirmResult{Confirmed: m.confirmed, Cancelled: m.cancelled}, nil
}
