package ui

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/metastacks/wtm/internal/log"
	"github.com/metastacks/wtm/internal/safety"
	"github.com/metastacks/wtm/internal/ui/prompt"
	"github.com/metastacks/wtm/internal/ui/styles"
)

// Confirmer answers safety prompts for the CLI.
type Confirmer struct {
	// Yes accepts every prompt without asking.
	Yes bool
	// Interactive allows asking the user. Without it prompts are declined.
	Interactive bool
	// Ask shows the prompt. Nil means prompt.Confirm.
	Ask func(ctx context.Context, question string) (prompt.ConfirmResult, error)
}

// NewConfirmer returns a Confirmer that asks only when both stdin and
// stderr are terminals.
func NewConfirmer(yes bool) *Confirmer {
	return &Confirmer{Yes: yes, Interactive: IsInteractive()}
}

// IsInteractive reports whether stdin and stderr are both terminals.
func IsInteractive() bool {
	return terminal(os.Stdin) && terminal(os.Stderr)
}

func terminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm implements safety.Confirmer.
func (c *Confirmer) Confirm(ctx context.Context, p safety.Prompt) (bool, error) {
	if c.Yes {
		return true, nil
	}
	if !c.Interactive {
		log.FromContext(ctx).Warn(p.Message(), "answer", "no (not a terminal, pass --yes to confirm)")
		return false, nil
	}

	ask := c.Ask
	if ask == nil {
		ask = prompt.Confirm
	}
	res, err := ask(ctx, styles.WarningStyle.Render(p.Message()))
	if err != nil {
		return false, err
	}
	return res.Confirmed && !res.Cancelled, nil
}
