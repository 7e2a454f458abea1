// Package debug provides developer-facing introspection for a field: a
// plain-text state dump and an optional interactive bubbletea stepper. It
// generalizes cpu/debugger.go's single-Cpu page table and status view to a
// grid of node.Node, but plays the exact same role — neither is ever
// called by field's own Step/Active/Run, so nothing here is load-bearing
// simulation behavior.
package debug

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"tis100/field"
	"tis100/node"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	haltStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Dump renders one line per node: coordinates, kind, activity, and
// registers where the kind has any (T21 only). Mirrors the density of
// cpu.model.status, generalized from one Cpu's registers to every node's.
func Dump(f *field.Field) string {
	var lines []string
	lines = append(lines, headerStyle.Render(fmt.Sprintf("field %dx%d", f.Width, f.Height)))

	for _, s := range f.State() {
		line := fmt.Sprintf("(%d,%d) %-6s %-6s", s.X, s.Y, s.Kind, s.Activity)
		if s.Kind == node.KindT21 {
			line += fmt.Sprintf(" acc=%-4d bak=%-4d ip=%d", s.Acc.Int(), s.Bak.Int(), s.IP)
		}
		if s.Activity == node.Idle {
			line = idleStyle.Render(line)
		}
		lines = append(lines, line)
	}

	if h := f.Halted(); h != nil {
		lines = append(lines, haltStyle.Render(fmt.Sprintf("hcf at (%d,%d) line %d", h.X, h.Y, h.Line)))
	}

	return strings.Join(lines, "\n")
}

// Verbose appends a full spew.Sdump of f.State() to Dump's summary, for
// when a one-liner per node isn't enough to see why a run diverged.
func Verbose(f *field.Field) string {
	return Dump(f) + "\n\n" + spew.Sdump(f.State())
}
