// Package progress shows a spinner on stderr while wtm waits for git.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-isatty"

	"github.com/metastacks/wtm/internal/ui/styles"
)

// messageUpdate replaces the spinner message.
type messageUpdate string

// Spinner renders an animated message until stopped. A Spinner whose
// output is not a terminal renders nothing.
type Spinner struct {
	out     io.Writer
	enabled bool

	mu      sync.Mutex
	program *tea.Program
	msgs    chan string
	done    chan struct{}
	running bool
	message string
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	msgs    <-chan string
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForMessage())
}

func (m spinnerModel) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.msgs
		if !ok {
			return tea.Quit()
		}
		return messageUpdate(msg)
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messageUpdate:
		m.message = string(msg)
		return m, m.waitForMessage()
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// New returns a Spinner writing to stderr when stderr is a terminal.
func New(message string) *Spinner {
	return NewWithOutput(message, os.Stderr, isTerminal(os.Stderr))
}

// NewWithOutput returns a Spinner writing to out. enabled false turns
// Start and Stop into no-ops.
func NewWithOutput(message string, out io.Writer, enabled bool) *Spinner {
	return &Spinner{out: out, enabled: enabled, message: message}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || !s.enabled {
		return
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.PrimaryStyle),
	)
	s.msgs = make(chan string, 10)
	s.done = make(chan struct{})
	s.program = tea.NewProgram(
		spinnerModel{spinner: sp, message: s.message, msgs: s.msgs},
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(s.out),
	)
	s.running = true

	done := s.done
	go func() {
		_, _ = s.program.Run()
		close(done)
	}()
}

// UpdateMessage changes the message. Updates are dropped while the
// previous one is still pending.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if !s.running {
		return
	}
	select {
	case s.msgs <- message:
	default:
	}
}

// Stop ends the animation and clears its line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.msgs)
	program, done := s.program, s.done
	s.mu.Unlock()

	program.Quit()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
	}
	fmt.Fprint(s.out, "\r\033[K")
}

// Run shows message while fn runs.
func Run(message string, fn func() error) error {
	s := New(message)
	s.Start()
	defer s.Stop()
	return fn()
}
