package render

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// FileMsg reports one processed file to the progress display.
type FileMsg struct {
	Done  int
	Total int
	Path  string
}

// DoneMsg ends the progress display.
type DoneMsg struct{}

type progressModel struct {
	done  int
	total int
	path  string
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FileMsg:
		m.done, m.total, m.path = msg.Done, msg.Total, msg.Path
		return m, nil
	case DoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.total == 0 {
		return "scanning...\n"
	}
	return fmt.Sprintf("[%d/%d] %s\n", m.done, m.total, m.path)
}

// ProgressReporter drives a live progress line while files are processed.
// A nil reporter is valid and does nothing, so callers can use the same
// code path with and without a terminal.
type ProgressReporter struct {
	program *tea.Program
	done    chan struct{}
}

// IsTerminal reports whether stderr is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// NewProgress starts a progress display on stderr. Returns nil when
// stderr is not a terminal.
func NewProgress() *ProgressReporter {
	if !IsTerminal() {
		return nil
	}

	p := &ProgressReporter{
		program: tea.NewProgram(progressModel{}, tea.WithOutput(os.Stderr), tea.WithInput(nil)),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		p.program.Run()
	}()

	return p
}

// Update reports progress for one processed file.
func (p *ProgressReporter) Update(done, total int, path string) {
	if p == nil {
		return
	}
	p.program.Send(FileMsg{Done: done, Total: total, Path: path})
}

// Finish stops the progress display and waits for it to shut down.
func (p *ProgressReporter) Finish() {
	if p == nil {
		return
	}
	p.program.Send(DoneMsg{})
	<-p.done
}
