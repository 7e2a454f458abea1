package debug

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tis100/field"
)

// tickInterval paces continuous stepping (the "r" key) at a rate a human
// can actually follow along with.
const tickInterval = 150 * time.Millisecond

// model is the bubbletea model driving the interactive stepper, generalized
// from cpu.model: instead of one Cpu advanced by tick, it holds a *field.Field
// advanced by Step, and instead of a page table it renders Dump's per-node
// view.
type model struct {
	f       *field.Field
	cycle   int
	running bool // true once the user has asked for continuous stepping
}

// Init performs no work: the caller is expected to hand Inspect an
// already-built, already-Finalized field, matching field's own
// construction/finalize split.
func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.step()
		case "r":
			m.running = !m.running
			if m.running {
				return m, m.tickCmd()
			}
		}
	case tickMsg:
		if m.running {
			m.step()
			return m, m.tickCmd()
		}
	}
	return m, nil
}

type tickMsg struct{}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg{} })
}

// step advances one cycle unless the field is no longer active or a halt
// already fired, mirroring the same stop conditions field.Run checks.
func (m *model) step() {
	if !m.f.Active() || m.f.Halted() != nil {
		return
	}
	m.f.Step()
	m.cycle++
}

func (m model) View() string {
	footer := "space/j: step   r: run/pause   q: quit"
	if !m.f.Active() {
		footer = "field no longer active   " + footer
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		fmt.Sprintf("cycle %d", m.cycle),
		"",
		Dump(m.f),
		"",
		footer,
	)
}

// Inspect starts an interactive stepper over an already-built field,
// blocking until the user quits. It is a developer convenience only —
// the same role cpu.Cpu.Debug plays for a single Cpu — and is never
// invoked by field itself.
func Inspect(f *field.Field) error {
	_, err := tea.NewProgram(model{f: f}).Run()
	return err
}
